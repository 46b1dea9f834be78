// Command motorsim runs the speed controller core against a simulated motor.
package main

import "github.com/horizon0210/PID-Controller-With-FPGA/motorsim/cmd"

func main() {
	cmd.Execute()
}
