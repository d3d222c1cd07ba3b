// Command aeronetd is a thin demo binary: it loads a ListenerConfig from a
// YAML file (or flags) via cobra+viper, mounts a static-file handler on a
// router, and runs the resulting aeronet.Server until it receives a signal.
package main

func main() {
	Execute()
}
