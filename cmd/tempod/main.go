// Command tempod runs the desktop activity tracker and pomodoro coordinator.
package main

import "github.com/kodeflow/tempod/cmd"

func main() {
	cmd.Execute()
}
