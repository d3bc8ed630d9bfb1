// Package delivery provides ready-made DeliveryChannel adapters for the
// verikit engine: SMTP email, AWS SNS SMS, and small glue types for tests
// and examples.
//
// Adapters format and send the message; they never store codes, retry sends,
// or make issuance decisions. A failed send is reported once to the engine
// and handled there.
package delivery
