package domain

// Op names the operation that produced a generation.
type Op string

const (
	OpUpdate      Op = "update"
	OpResetField  Op = "reset_field"
	OpReset       Op = "reset"
	OpClear       Op = "clear"
	OpSetDefaults Op = "set_defaults"
	OpAddComputed Op = "add_computed_field"
)
