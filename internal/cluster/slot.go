package cluster

import (
	"bytes"

	"github.com/luiz-simples/redix/internal/domain"
)

const (
	SlotCount = 16384

	// NoSlot is returned for commands without keys.
	NoSlot = -1

	crcPolynomial = 0x1021
)

var crcTable [256]uint16

func init() {
	for index := range crcTable {
		crc := uint16(index) << 8
		for range 8 {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ crcPolynomial
			} else {
				crc <<= 1
			}
		}
		crcTable[index] = crc
	}
}

// CRC16 is the XMODEM variant used by Redis Cluster.
func CRC16(data []byte) uint16 {
	var crc uint16
	for _, value := range data {
		crc = crc<<8 ^ crcTable[byte(crc>>8)^value]
	}
	return crc
}

// HashTag returns the part of key that is hashed: the content of the first
// non-empty {...} section, or the whole key.
func HashTag(key []byte) []byte {
	start := bytes.IndexByte(key, '{')
	if start < 0 {
		return key
	}

	length := bytes.IndexByte(key[start+1:], '}')
	if length <= 0 {
		return key
	}

	return key[start+1 : start+1+length]
}

func Slot(key []byte) int {
	return int(CRC16(HashTag(key)) % SlotCount)
}

// SlotFor returns the slot shared by every key of cmd, NoSlot when cmd has
// no keys, and ErrCrossSlot when keys disagree.
func SlotFor(cmd domain.Command) (int, error) {
	keyed, ok := cmd.(domain.KeyedCommand)
	if !ok {
		return NoSlot, nil
	}

	keys := keyed.Keys()
	if len(keys) == 0 {
		return NoSlot, nil
	}

	slot := Slot(keys[0])

	for _, key := range keys[1:] {
		if Slot(key) != slot {
			return NoSlot, domain.ErrCrossSlot
		}
	}

	return slot, nil
}
