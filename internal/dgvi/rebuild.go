package dgvi

import (
	"context"
	"log"

	"github.com/passbi/routecore/internal/models"
)

// RebuildChunkSize is the ~100-road-id batch size spec §4.3.1 names.
const RebuildChunkSize = 100

// RebuildMonth implements spec §4.3.1: iterate every road id in
// chunks, compute per-edge DGVI, upsert (road, month) rows, and after
// all chunks complete, recompute the per-month min-max normalization.
// The operation is idempotent: re-running it for the same month with
// the same GVI point data reproduces the same raw and normalized
// values (spec §8's rebuild-idempotence property), since UpsertRoadDGVI
// overwrites dgvi_raw rather than accumulating into it.
func (e *Evaluator) RebuildMonth(ctx context.Context, month string) error {
	roadIDs, err := e.store.AllRoadIDs(ctx)
	if err != nil {
		return err
	}

	log.Printf("dgvi: rebuilding month %s over %d roads", month, len(roadIDs))

	for start := 0; start < len(roadIDs); start += RebuildChunkSize {
		end := start + RebuildChunkSize
		if end > len(roadIDs) {
			end = len(roadIDs)
		}
		chunk := roadIDs[start:end]

		rows := make([]models.RoadDGVI, 0, len(chunk))
		for _, roadID := range chunk {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			raw, err := e.EdgeDGVI(ctx, roadID, month)
			if err != nil {
				log.Printf("dgvi: rebuild skipped road %d (%v)", roadID, err)
				continue
			}
			rows = append(rows, models.RoadDGVI{RoadID: roadID, Month: month, Raw: raw})
		}

		if err := e.store.UpsertRoadDGVI(ctx, rows); err != nil {
			return err
		}

		log.Printf("dgvi: rebuilt roads %d-%d of %d", start+1, end, len(roadIDs))
	}

	if err := e.store.NormalizeMonth(ctx, month); err != nil {
		return err
	}

	log.Printf("dgvi: rebuild of month %s complete", month)
	return nil
}
