package engine

import "errors"

// ErrAccessDenied is returned when the device address book refuses access on
// an explicit save; during background reconciliation a denial is silent.
var ErrAccessDenied = errors.New("address book access denied")
