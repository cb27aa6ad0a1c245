package services

import (
	"context"
	"fmt"

	"github.com/joshua-takyi/gatepass/internal/models"
)

// SerialAllocator issues human-readable serials such as DP-0001. Numbers come
// from a per-tier counter so two allocations never share a value; the unique
// index on the ledger still has the final word.
type SerialAllocator struct {
	sequences models.SequenceRepo
}

func NewSerialAllocator(sequences models.SequenceRepo) *SerialAllocator {
	return &SerialAllocator{sequences: sequences}
}

func (sa *SerialAllocator) Next(ctx context.Context, tier models.TicketTier) (string, error) {
	n, err := sa.sequences.NextSequence(ctx, tier.Key)
	if err != nil {
		return "", fmt.Errorf("error allocating %s serial: %w", tier.Key, err)
	}
	return FormatSerial(tier, n), nil
}

func FormatSerial(tier models.TicketTier, n int64) string {
	return fmt.Sprintf("%s-%04d", tier.Prefix, n)
}
