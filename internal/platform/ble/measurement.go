// Package ble models the Bluetooth heart-rate pipeline: decoding the
// standard GATT Heart Rate Measurement characteristic and an explicit
// session object that owns the single peripheral connection and feeds
// readings into the vitals write path.
package ble

import (
	"encoding/binary"
	"errors"
)

// Standard GATT UUIDs for the Heart Rate Service.
const (
	HeartRateServiceUUID        = "0000180d-0000-1000-8000-00805f9b34fb"
	HeartRateMeasurementUUID    = "00002a37-0000-1000-8000-00805f9b34fb"
	flagHeartRateValueFormat16  = 0x01
	flagSensorContactDetected   = 0x02
	flagSensorContactSupported  = 0x04
	flagEnergyExpendedPresent   = 0x08
	flagRRIntervalPresent       = 0x10
)

var ErrShortPacket = errors.New("ble: heart rate packet too short")

// Measurement is one decoded Heart Rate Measurement notification.
type Measurement struct {
	BPM           int
	SensorContact bool
}

// DecodeHeartRate decodes a GATT Heart Rate Measurement value: flags byte at
// offset 0, then an 8-bit value at offset 1, or a 16-bit little-endian value
// at offsets 1..2 when the format flag is set.
func DecodeHeartRate(buf []byte) (Measurement, error) {
	if len(buf) < 2 {
		return Measurement{}, ErrShortPacket
	}
	flags := buf[0]
	m := Measurement{
		SensorContact: flags&flagSensorContactDetected != 0,
	}
	if flags&flagHeartRateValueFormat16 != 0 {
		if len(buf) < 3 {
			return Measurement{}, ErrShortPacket
		}
		m.BPM = int(binary.LittleEndian.Uint16(buf[1:3]))
	} else {
		m.BPM = int(buf[1])
	}
	return m, nil
}
