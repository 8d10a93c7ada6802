package main

import "log"

func main() {

	server, err := InitializeTaxService()
	if err != nil {
		log.Fatal(err)
		return
	}

	if err = server.Run(server.Addr); err != nil {
		log.Fatal(err.Error())
	}

}
