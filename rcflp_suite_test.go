package rcflp_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestRCFLP(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "RCFLP Suite")
}
