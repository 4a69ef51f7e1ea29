// Package lark notifies a reviewer chat when invoice records settle needing
// human attention.
package lark

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"go.uber.org/zap"

	"github.com/hereandnowai/invoice-processor/internal/domain/entity"
)

// Config holds the Lark app credentials and the reviewer to notify.
type Config struct {
	AppID         string
	AppSecret     string
	ReceiveID     string
	ReceiveIDType string
}

// Notifier sends a text message summarizing a record that landed in
// REVIEW_PENDING or ERROR. With incomplete configuration every call is a
// silent no-op, so the pipeline works without Lark set up.
type Notifier struct {
	client        *lark.Client
	receiveID     string
	receiveIDType string
	logger        *zap.Logger
}

func NewNotifier(cfg Config, logger *zap.Logger) *Notifier {
	var client *lark.Client
	if cfg.AppID != "" && cfg.AppSecret != "" {
		client = lark.NewClient(cfg.AppID, cfg.AppSecret,
			lark.WithEnableTokenCache(true),
		)
	}
	idType := cfg.ReceiveIDType
	if idType == "" {
		idType = "open_id"
	}
	return &Notifier{
		client:        client,
		receiveID:     cfg.ReceiveID,
		receiveIDType: idType,
		logger:        logger,
	}
}

func (n *Notifier) RecordNeedsAttention(ctx context.Context, rec *entity.InvoiceRecord) error {
	if n.client == nil || n.receiveID == "" {
		return nil
	}

	content, err := json.Marshal(map[string]string{"text": summarize(rec)})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType(n.receiveIDType).
		Body(larkim.NewCreateMessageReqBodyBuilder().
			ReceiveId(n.receiveID).
			MsgType("text").
			Content(string(content)).
			Build()).
		Build()

	resp, err := n.client.Im.Message.Create(ctx, req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	if !resp.Success() {
		return fmt.Errorf("lark api error: code=%d, msg=%s", resp.Code, resp.Msg)
	}

	n.logger.Info("reviewer notified",
		zap.String("record_id", rec.ID),
		zap.String("status", string(rec.Status)))
	return nil
}

func summarize(rec *entity.InvoiceRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Invoice %s needs attention (%s).", rec.FileName, rec.Status)
	if rec.ErrorMessage != "" {
		fmt.Fprintf(&b, "\n%s", rec.ErrorMessage)
	}
	for i, ve := range rec.ValidationErrors {
		if i == 3 {
			fmt.Fprintf(&b, "\n...and %d more", len(rec.ValidationErrors)-3)
			break
		}
		fmt.Fprintf(&b, "\n- %s", ve.Message)
	}
	return b.String()
}
