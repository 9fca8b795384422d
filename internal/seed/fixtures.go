package seed

import (
	"time"

	"github.com/shiptrack/shiptrack-backend/pkg/enums"
)

type eventFixture struct {
	eventType   string
	location    string
	description string
	at          string
}

type shipmentFixture struct {
	trackingNumber    string
	status            enums.ShipmentStatus
	from, to          string
	estimatedDelivery string
	windowStart       string
	windowEnd         string
	signatureRequired bool
	events            []eventFixture
}

// sampleShipments mirrors the demo data shipped with the tracking site.
var sampleShipments = []shipmentFixture{
	{
		trackingNumber:    "882643599240",
		status:            enums.ShipmentStatusOutForDelivery,
		from:              "Waco, TX US",
		to:                "Bristol, TN US",
		estimatedDelivery: "2024-01-15",
		windowStart:       "11:30",
		windowEnd:         "15:30",
		events: []eventFixture{
			{enums.EventTypeLabelCreated, "Waco, TX US", "Label Created", "2024-01-09T12:37:00Z"},
			{enums.EventTypePackageReceived, "HEWITT, TX", "We have your package", "2024-01-09T16:05:00Z"},
			{enums.EventTypeInTransit, "HUTCHINS, TX", "Departed FedEx location", "2024-01-11T09:34:00Z"},
		},
	},
	{
		trackingNumber:    "123456789012",
		status:            enums.ShipmentStatusInTransit,
		from:              "Los Angeles, CA US",
		to:                "New York, NY US",
		estimatedDelivery: "2024-01-18",
		windowStart:       "09:00",
		windowEnd:         "17:00",
		signatureRequired: true,
		events: []eventFixture{
			{enums.EventTypeLabelCreated, "Los Angeles, CA US", "Label Created", "2024-01-12T10:00:00Z"},
			{enums.EventTypePackageReceived, "LOS ANGELES, CA", "Package picked up", "2024-01-12T14:30:00Z"},
		},
	},
	{
		trackingNumber:    "987654321098",
		status:            enums.ShipmentStatusDelivered,
		from:              "Miami, FL US",
		to:                "Orlando, FL US",
		estimatedDelivery: "2024-01-10",
		windowStart:       "08:00",
		windowEnd:         "18:00",
		events: []eventFixture{
			{enums.EventTypeLabelCreated, "Miami, FL US", "Label Created", "2024-01-08T09:15:00Z"},
			{enums.EventTypePackageReceived, "MIAMI, FL", "Package received at facility", "2024-01-08T11:45:00Z"},
			{enums.EventTypeInTransit, "MIAMI, FL", "In transit to destination", "2024-01-09T06:20:00Z"},
			{enums.EventTypeOutForDelivery, "ORLANDO, FL", "Out for delivery", "2024-01-10T08:30:00Z"},
			{enums.EventTypeDelivered, "ORLANDO, FL", "Delivered", "2024-01-10T14:22:00Z"},
		},
	},
}

func mustTime(layout, value string) time.Time {
	t, err := time.Parse(layout, value)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}
