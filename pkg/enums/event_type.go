package enums

// Well-known tracking event types. Event types are free-form tags; these are the
// ones the system itself emits or the admin tooling offers.
const (
	EventTypeLabelCreated    = "label_created"
	EventTypePackageReceived = "package_received"
	EventTypeInTransit       = "in_transit"
	EventTypeOutForDelivery  = "out_for_delivery"
	EventTypeDelivered       = "delivered"
	EventTypeFailed          = "failed"
)
