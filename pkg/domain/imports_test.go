package domain

import (
	"testing"

	"haccpcore/testutil"
)

// pkg/domain is imported by API clients; it stays on the standard library.
func TestDomainImportsStayStdlib(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.Any(testutil.InternalImportForbidden, testutil.ThirdPartyImportForbidden), "pkg/domain is a public API package")
}

func TestCorrectiveStatusesAreDocumented(t *testing.T) {
	testutil.AssertDocumented(t, ".",
		"CorrectiveStatus",
		"CorrectiveStatusPending",
		"CorrectiveStatusAwaitingFollowUp",
		"CorrectiveStatusAwaitingVerification",
		"CorrectiveStatusClosed",
	)
}
