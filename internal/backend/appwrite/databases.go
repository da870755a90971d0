package appwrite

import (
	"context"
	"net/http"
	"net/url"

	"github.com/and161185/snapgram/internal/backend"
)

func documentsPath(databaseID, collectionID string) string {
	return "/databases/" + url.PathEscape(databaseID) + "/collections/" + url.PathEscape(collectionID) + "/documents"
}

// CreateDocument stores a new document.
func (c *Client) CreateDocument(ctx context.Context, databaseID, collectionID, documentID string, data map[string]any) (*backend.Document, error) {
	var out backend.Document
	_, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   documentsPath(databaseID, collectionID),
		body:   map[string]any{"documentId": documentID, "data": data},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetDocument loads one document.
func (c *Client) GetDocument(ctx context.Context, databaseID, collectionID, documentID string) (*backend.Document, error) {
	var out backend.Document
	_, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   documentsPath(databaseID, collectionID) + "/" + url.PathEscape(documentID),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListDocuments lists documents matching queries.
func (c *Client) ListDocuments(ctx context.Context, databaseID, collectionID string, queries ...backend.Query) (*backend.DocumentList, error) {
	q := url.Values{}
	for _, qq := range queries {
		q.Add("queries[]", qq.String())
	}
	var out struct {
		Total     int                `json:"total"`
		Documents []backend.Document `json:"documents"`
	}
	_, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   documentsPath(databaseID, collectionID),
		query:  q,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &backend.DocumentList{Total: out.Total, Documents: out.Documents}, nil
}

// UpdateDocument patches a document.
func (c *Client) UpdateDocument(ctx context.Context, databaseID, collectionID, documentID string, data map[string]any) (*backend.Document, error) {
	var out backend.Document
	_, err := c.do(ctx, request{
		method: http.MethodPatch,
		path:   documentsPath(databaseID, collectionID) + "/" + url.PathEscape(documentID),
		body:   map[string]any{"data": data},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteDocument removes a document.
func (c *Client) DeleteDocument(ctx context.Context, databaseID, collectionID, documentID string) error {
	_, err := c.do(ctx, request{
		method: http.MethodDelete,
		path:   documentsPath(databaseID, collectionID) + "/" + url.PathEscape(documentID),
	}, nil)
	return err
}
