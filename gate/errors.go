package gate

import "errors"

// ErrApprovalBusy is returned in reject mode when an approval is already in
// flight.
var ErrApprovalBusy = errors.New("approval already in progress")
