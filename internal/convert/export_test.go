package convert

// SetRemove replaces how the driver deletes originals.
func SetRemove(d *Driver, remove func(path string) error) { d.remove = remove }
