package testutil

// FixedID returns a generator that always yields id. An empty id yields a
// fixed UUIDv7-shaped value.
func FixedID(id string) func() string {
	if id == "" {
		id = "00000000-0000-7000-8000-000000000001"
	}
	return func() string { return id }
}
