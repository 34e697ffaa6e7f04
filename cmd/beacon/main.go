// Beacon - green light detection and motor alignment over a serial link
package main

func main() {
	Execute()
}
