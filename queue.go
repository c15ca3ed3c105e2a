package approvals

import (
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/approvals/service/approval"
	"github.com/viant/approvals/service/messaging"
	qfs "github.com/viant/approvals/service/messaging/fs"
	qmemory "github.com/viant/approvals/service/messaging/memory"
)

// NewEventQueue builds the approval event queue for the configured vendor.
func NewEventQueue(config QueueConfig) (messaging.Queue[approval.Event], error) {
	switch messaging.Vendor(config.Vendor) {
	case messaging.VendorMemory, "":
		return qmemory.NewQueue[approval.Event](qmemory.DefaultConfig()), nil
	case messaging.VendorFS:
		queueConfig := qfs.DefaultConfig()
		if config.BasePath != "" {
			queueConfig.BasePath = config.BasePath
		}
		return qfs.NewQueue[approval.Event](afs.New(), queueConfig)
	}
	return nil, fmt.Errorf("unsupported queue vendor: %s", config.Vendor)
}
