package grouping

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"github.com/bdeakin/disastermap/internal/logger"
)

// PlaceholderLabel is the deterministic fallback applied when the model
// cannot be reached or does not return a grouping for a record. Failed
// records keep their cache slot empty so a later run can retry them.
const PlaceholderLabel = "Unnamed"

// defaultChunkSize bounds how many records go into a single model request.
const defaultChunkSize = 50

// InputRecord is one record to group.
type InputRecord struct {
	RecordID        string `json:"record_id"`
	Year            string `json:"year"`
	IncidentType    string `json:"disaster_type"`
	DeclarationName string `json:"declaration_name"`
}

// Result summarizes an enrichment run for observability: how many records
// were served from cache, how many the model grouped this run, and how
// many remain ungrouped (failed or skipped) for a later retry.
type Result struct {
	RunID     string `json:"run_id"`
	Cached    int    `json:"cached"`
	Enriched  int    `json:"enriched"`
	Remaining int    `json:"remaining"`
}

// Completer abstracts the chat-completion call so the enricher is testable
// without network access.
type Completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Enricher groups declaration names via an LLM, reading and writing the
// durable cache around each batch.
type Enricher struct {
	store     *Store
	client    Completer
	model     string
	chunkSize int
}

// NewEnricher creates an enricher over the given store and client.
func NewEnricher(store *Store, client Completer, model string) *Enricher {
	return &Enricher{
		store:     store,
		client:    client,
		model:     model,
		chunkSize: defaultChunkSize,
	}
}

const systemPrompt = "You classify disaster declaration records and return a JSON list of objects. " +
	"For each record, determine whether it refers to a named event and assign a group label. " +
	"Use the provided record_id. If the name is not clearly a named event, set " +
	"group_label=\"Unnamed\" and confidence accordingly. Do not invent specifics beyond the input."

// modelRow is the JSON object shape requested from the model.
type modelRow struct {
	RecordID   string  `json:"record_id"`
	GroupLabel string  `json:"group_label"`
	ThemeLabel string  `json:"theme_group"`
	Confidence float64 `json:"confidence"`
}

// Enrich groups the records, serving unchanged ones from cache and sending
// the rest to the model in chunks. A failed chunk is non-fatal: its records
// are counted as remaining and their cache entries stay unmodified.
func (e *Enricher) Enrich(ctx context.Context, records []InputRecord) (Result, map[string]string, error) {
	res := Result{RunID: uuid.New().String()}
	labels := make(map[string]string, len(records))

	var pending []InputRecord
	for _, r := range records {
		if r.RecordID == "" {
			continue
		}
		hash := HashSource(r.IncidentType, r.DeclarationName)
		entry, err := e.store.GetFresh(ctx, r.RecordID, hash)
		if err != nil {
			return res, nil, err
		}
		if entry != nil {
			labels[r.RecordID] = entry.GroupLabel
			res.Cached++
			continue
		}
		pending = append(pending, r)
	}

	for start := 0; start < len(pending); start += e.chunkSize {
		end := start + e.chunkSize
		if end > len(pending) {
			end = len(pending)
		}
		chunk := pending[start:end]

		rows, err := e.groupChunk(ctx, chunk)
		if err != nil {
			// Non-fatal: fall back to the placeholder for this chunk and
			// leave the cache untouched so a retry can complete it.
			logger.Warn("grouping chunk failed (%d records): %v", len(chunk), err)
			for _, r := range chunk {
				labels[r.RecordID] = PlaceholderLabel
			}
			res.Remaining += len(chunk)
			continue
		}

		byID := make(map[string]modelRow, len(rows))
		for _, row := range rows {
			byID[row.RecordID] = row
		}
		for _, r := range chunk {
			row, ok := byID[r.RecordID]
			if !ok {
				labels[r.RecordID] = PlaceholderLabel
				res.Remaining++
				continue
			}
			label := strings.TrimSpace(row.GroupLabel)
			if label == "" {
				label = PlaceholderLabel
			}
			labels[r.RecordID] = label
			if _, err := e.store.Upsert(ctx, Entry{
				RecordID:   r.RecordID,
				SourceHash: HashSource(r.IncidentType, r.DeclarationName),
				GroupLabel: label,
				ThemeLabel: strings.TrimSpace(row.ThemeLabel),
				Confidence: row.Confidence,
				ModelID:    e.model,
			}); err != nil {
				return res, nil, err
			}
			res.Enriched++
		}
	}

	logger.Info("grouping run %s: cached=%d enriched=%d remaining=%d",
		res.RunID, res.Cached, res.Enriched, res.Remaining)
	return res, labels, nil
}

// groupChunk sends one batch to the model and parses the JSON list out of
// its reply.
func (e *Enricher) groupChunk(ctx context.Context, chunk []InputRecord) ([]modelRow, error) {
	payload, err := json.Marshal(chunk)
	if err != nil {
		return nil, fmt.Errorf("failed to encode chunk: %w", err)
	}
	userPrompt := "Return a strict JSON list of objects with keys: record_id, " +
		"group_label (string), theme_group (string), confidence (0-1). " +
		"Input records:\n" + string(payload)

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: 0.1,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}
	return extractJSONList(resp.Choices[0].Message.Content)
}

// extractJSONList pulls the first JSON array out of free-form model output.
func extractJSONList(text string) ([]modelRow, error) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("no JSON list found in response")
	}
	var rows []modelRow
	if err := json.Unmarshal([]byte(text[start:end+1]), &rows); err != nil {
		return nil, fmt.Errorf("failed to decode model response: %w", err)
	}
	return rows, nil
}
