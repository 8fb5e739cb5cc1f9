package main

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestDramsimCLI(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Dramsim CLI Suite")
}
