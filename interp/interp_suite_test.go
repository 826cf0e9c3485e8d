package interp_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

//go:generate mockgen -package=interp_test -destination=mock_loader_test.go github.com/sarchlab/vsax86/ir Loader
func TestInterp(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Interp Suite")
}
