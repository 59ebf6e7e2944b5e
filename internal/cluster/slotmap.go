package cluster

import (
	"slices"
	"sync"
	"sync/atomic"
)

type (
	// SlotMap maps slots to node endpoints. Readers load an immutable table;
	// writers build a modified copy and swap it in.
	SlotMap struct {
		table atomic.Pointer[slotTable]
		write sync.Mutex
	}

	// slots holds index+1 into nodes, zero meaning unassigned.
	slotTable struct {
		nodes []string
		slots [SlotCount]uint16
	}

	SlotRange struct {
		Start    int
		End      int
		Endpoint string
	}
)

func NewSlotMap() *SlotMap {
	slotMap := &SlotMap{}
	slotMap.table.Store(&slotTable{})
	return slotMap
}

func (slotMap *SlotMap) Lookup(slot int) (string, bool) {
	if !validSlot(slot) {
		return "", false
	}

	table := slotMap.table.Load()
	index := table.slots[slot]

	if index == 0 {
		return "", false
	}

	return table.nodes[index-1], true
}

// Set assigns one slot, as after a MOVED redirection.
func (slotMap *SlotMap) Set(slot int, endpoint string) {
	slotMap.SetRange(slot, slot, endpoint)
}

func (slotMap *SlotMap) SetRange(start, end int, endpoint string) {
	if !validSlot(start) || !validSlot(end) || start > end {
		return
	}

	slotMap.write.Lock()
	defer slotMap.write.Unlock()

	table := slotMap.table.Load().clone()
	index := table.nodeIndex(endpoint)

	for slot := start; slot <= end; slot++ {
		table.slots[slot] = index
	}

	slotMap.table.Store(table)
}

// Replace swaps in a table built from ranges; slots not covered become
// unassigned.
func (slotMap *SlotMap) Replace(ranges []SlotRange) {
	table := &slotTable{}

	for _, slotRange := range ranges {
		if !validSlot(slotRange.Start) || !validSlot(slotRange.End) {
			continue
		}

		index := table.nodeIndex(slotRange.Endpoint)
		for slot := slotRange.Start; slot <= slotRange.End; slot++ {
			table.slots[slot] = index
		}
	}

	slotMap.write.Lock()
	defer slotMap.write.Unlock()

	slotMap.table.Store(table)
}

func (slotMap *SlotMap) Reset() {
	slotMap.Replace(nil)
}

// Endpoints lists the nodes that own at least one slot.
func (slotMap *SlotMap) Endpoints() []string {
	table := slotMap.table.Load()
	used := make(map[uint16]bool, len(table.nodes))

	for _, index := range table.slots {
		if index > 0 {
			used[index] = true
		}
	}

	endpoints := make([]string, 0, len(used))
	for index := range used {
		endpoints = append(endpoints, table.nodes[index-1])
	}

	slices.Sort(endpoints)
	return endpoints
}

// Assigned counts slots with an owner.
func (slotMap *SlotMap) Assigned() int {
	table := slotMap.table.Load()
	count := 0

	for _, index := range table.slots {
		if index > 0 {
			count++
		}
	}

	return count
}

func (table *slotTable) clone() *slotTable {
	copied := &slotTable{nodes: slices.Clone(table.nodes)}
	copied.slots = table.slots
	return copied
}

func (table *slotTable) nodeIndex(endpoint string) uint16 {
	if position := slices.Index(table.nodes, endpoint); position >= 0 {
		return uint16(position + 1)
	}

	table.nodes = append(table.nodes, endpoint)
	return uint16(len(table.nodes))
}

func validSlot(slot int) bool {
	return slot >= 0 && slot < SlotCount
}
