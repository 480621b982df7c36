package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"logistix/internal/core/id"
	"logistix/internal/domain/audit"
)

// CompressionAlgo specifies the compression algorithm used for changes.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// DefaultCompressThreshold is the size above which changes are stored compressed.
const DefaultCompressThreshold = 10 * 1024

var _ audit.Recorder = (*AuditRepo)(nil)

// AuditRepo stores audit entries in audit_log.
// Large change sets (e.g. full templates) are zstd-compressed.
type AuditRepo struct {
	db                QuerierProvider
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

// NewAuditRepo creates an audit repository.
func NewAuditRepo(db QuerierProvider) (*AuditRepo, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &AuditRepo{
		db:                db,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: DefaultCompressThreshold,
	}, nil
}

// Record implements audit.Recorder.
func (r *AuditRepo) Record(ctx context.Context, e audit.Entry) error {
	changes, compressed, algo, err := r.encode(e.Changes)
	if err != nil {
		return err
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	const query = `
		INSERT INTO audit_log (
			id, tenant_id, entity_type, entity_id, action, actor_id,
			changes, changes_compressed, compression_algo, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = r.db.GetQuerier(ctx).Exec(ctx, query,
		id.NewString(), e.TenantID, e.EntityType, e.EntityID, string(e.Action), nullable(e.ActorID),
		changes, compressed, string(algo), e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (r *AuditRepo) encode(changes map[string]any) (json.RawMessage, []byte, CompressionAlgo, error) {
	if changes == nil {
		return nil, nil, CompressionNone, nil
	}
	raw, err := json.Marshal(changes)
	if err != nil {
		return nil, nil, "", fmt.Errorf("marshal changes: %w", err)
	}
	if len(raw) > r.compressThreshold {
		return nil, r.encoder.EncodeAll(raw, nil), CompressionZstd, nil
	}
	return raw, nil, CompressionNone, nil
}

func (r *AuditRepo) decode(changes json.RawMessage, compressed []byte, algo CompressionAlgo) (map[string]any, error) {
	raw := []byte(changes)
	if algo == CompressionZstd && len(compressed) > 0 {
		var err error
		if raw, err = r.decoder.DecodeAll(compressed, nil); err != nil {
			return nil, fmt.Errorf("decompress changes: %w", err)
		}
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("unmarshal changes: %w", err)
	}
	return out, nil
}

// History returns the newest entries for one entity.
func (r *AuditRepo) History(ctx context.Context, tenantID, entityType, entityID string, limit int) ([]audit.Entry, error) {
	const query = `
		SELECT entity_type, entity_id, action, COALESCE(actor_id, ''),
		       changes, changes_compressed, compression_algo, created_at
		FROM audit_log
		WHERE tenant_id = $1 AND entity_type = $2 AND entity_id = $3
		ORDER BY created_at DESC
		LIMIT $4
	`
	rows, err := r.db.GetQuerier(ctx).Query(ctx, query, tenantID, entityType, entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	entries := []audit.Entry{}
	for rows.Next() {
		var (
			e          audit.Entry
			action     string
			changes    json.RawMessage
			compressed []byte
			algo       string
		)
		if err := rows.Scan(&e.EntityType, &e.EntityID, &action, &e.ActorID,
			&changes, &compressed, &algo, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.TenantID = tenantID
		e.Action = audit.Action(action)
		if e.Changes, err = r.decode(changes, compressed, CompressionAlgo(algo)); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
