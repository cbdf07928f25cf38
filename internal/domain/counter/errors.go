package counter

const Resource = "leave counter"

// Key formats the identity of a counter for error messages.
func Key(employeeID string, kind Kind, periodKey string) string {
	return employeeID + "/" + string(kind) + "/" + periodKey
}
