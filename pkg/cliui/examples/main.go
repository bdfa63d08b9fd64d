// Copyright (c) 2025 Broadcom. All Rights Reserved.
// Broadcom Confidential. The term "Broadcom" refers to Broadcom Inc.
// and/or its subsidiaries.

package main

import (
	"fmt"
	"log"

	"github.com/vmware/ssh-fanout/pkg/cliui"
)

func main() {
	ok, err := cliui.Confirm("Continue on following 3 servers?")
	if err != nil {
		log.Fatalf("Error occurred during confirmation: %v", err)
	}

	fmt.Printf("Confirmed: %t\n", ok)
}
