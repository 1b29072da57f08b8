// Package gattnames resolves well-known GATT UUIDs to their assigned names.
// The tables cover the services a wearable is likely to expose; unknown
// UUIDs resolve to the empty string.
package gattnames

import "strings"

var services = map[string]string{
	"1800": "Generic Access",
	"1801": "Generic Attribute",
	"180a": "Device Information",
	"180f": "Battery Service",
	"1812": "Human Interface Device",
	"180d": "Heart Rate",
	"1805": "Current Time Service",
	"6e400001b5a3f393e0a9e50e24dcca9e": "Nordic UART Service",
}

var characteristics = map[string]string{
	"2a00": "Device Name",
	"2a01": "Appearance",
	"2a05": "Service Changed",
	"2a19": "Battery Level",
	"2a24": "Model Number String",
	"2a25": "Serial Number String",
	"2a26": "Firmware Revision String",
	"2a29": "Manufacturer Name String",
	"2a37": "Heart Rate Measurement",
	"2a4d": "Report",
	"6e400002b5a3f393e0a9e50e24dcca9e": "UART RX",
	"6e400003b5a3f393e0a9e50e24dcca9e": "UART TX",
}

// Normalize strips dashes and lowercases a UUID for table lookup.
func Normalize(uuid string) string {
	return strings.ToLower(strings.ReplaceAll(uuid, "-", ""))
}

// LookupService returns the assigned name for a service UUID, or "".
func LookupService(uuid string) string {
	return services[Normalize(uuid)]
}

// LookupCharacteristic returns the assigned name for a characteristic UUID,
// or "".
func LookupCharacteristic(uuid string) string {
	return characteristics[Normalize(uuid)]
}
