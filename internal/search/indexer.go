package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/segmentio/kafka-go"

	"github.com/sweetshop/backend/internal/logging"
	"github.com/sweetshop/backend/internal/models"
)

// Indexer tails sweet_events and mirrors catalog mutations into the search
// index. It commits offsets only after the index write succeeds, so a
// crashed indexer replays instead of dropping events.
type Indexer struct {
	Reader *kafka.Reader
	ES     *elasticsearch.Client
	Index  string
}

type sweetEvent struct {
	Type    string        `json:"type"`
	SweetID uint          `json:"sweetID"`
	Sweet   *models.Sweet `json:"sweet"`
}

func (ix *Indexer) Run(ctx context.Context) error {
	l := logging.FromContext(ctx).With("svc", "indexer", "index", ix.Index)

	for {
		m, err := ix.Reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("indexer: fetch: %w", err)
		}

		var ev sweetEvent
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			l.Warn("skipping malformed event", "error", err)
			if err := ix.Reader.CommitMessages(ctx, m); err != nil {
				return fmt.Errorf("indexer: commit: %w", err)
			}
			continue
		}

		if err := ix.apply(ctx, ev); err != nil {
			l.Error("index write failed", "type", ev.Type, "sweet_id", ev.SweetID, "error", err)
			return err
		}

		l.Info("event applied", "type", ev.Type, "sweet_id", ev.SweetID)
		if err := ix.Reader.CommitMessages(ctx, m); err != nil {
			return fmt.Errorf("indexer: commit: %w", err)
		}
	}
}

func (ix *Indexer) apply(ctx context.Context, ev sweetEvent) error {
	docID := strconv.FormatUint(uint64(ev.SweetID), 10)

	switch ev.Type {
	case "sweet_deleted":
		res, err := ix.ES.Delete(ix.Index, docID, ix.ES.Delete.WithContext(ctx))
		if err != nil {
			return err
		}
		defer res.Body.Close()
		if res.IsError() && res.StatusCode != 404 {
			return fmt.Errorf("delete %s: %s", docID, res.Status())
		}
		return nil

	case "sweet_created", "sweet_updated", "sweet_purchased", "sweet_restocked":
		if ev.Sweet == nil {
			return nil
		}
		body, err := json.Marshal(ev.Sweet)
		if err != nil {
			return err
		}
		res, err := ix.ES.Index(ix.Index, bytes.NewReader(body),
			ix.ES.Index.WithDocumentID(docID),
			ix.ES.Index.WithContext(ctx),
		)
		if err != nil {
			return err
		}
		defer res.Body.Close()
		if res.IsError() {
			return fmt.Errorf("index %s: %s", docID, res.Status())
		}
		return nil
	}

	return nil
}
