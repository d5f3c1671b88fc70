package badgerblob

import "fmt"

// Key prefixes for containers and objects
const (
	containerPrefix = "blobcon"
	objectPrefix    = "blobobj"
)

// makeContainerKey generates the marker key for a container.
func makeContainerKey(container string) []byte {
	return []byte(fmt.Sprintf("%s:%s", containerPrefix, container))
}

// makeObjectKey generates a key for an object within a container.
// Format: prefix:container:name
func makeObjectKey(container, name string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", objectPrefix, container, name))
}

// makeObjectScanPrefix generates the iteration prefix covering every
// object in a container.
func makeObjectScanPrefix(container string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", objectPrefix, container))
}
