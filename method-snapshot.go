package webzip

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	nurl "net/url"
	"strings"

	"github.com/pkg/errors"
)

// snapshotMethod asks the SingleFile service for a self-contained HTML
// file of the page. The service only answers with a link to that file.
type snapshotMethod struct {
	arc *Archiver
}

type snapshotResponse struct {
	DownloadURL string      `json:"downloadUrl"`
	Size        interface{} `json:"size"`
}

func (m *snapshotMethod) Name() string { return "SingleFile API" }

func (m *snapshotMethod) Description() string { return "Downloading as self-contained HTML..." }

func (m *snapshotMethod) Archive(ctx context.Context, req *Request) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, m.arc.SnapshotTimeout)
	defer cancel()

	url, err := serviceURL(m.arc.SnapshotEndpoint, nurl.Values{"url": {req.RawURL}})
	if err != nil {
		return nil, err
	}

	body, _, err := m.arc.downloadFile(ctx, req, url, map[string]string{
		"Accept": "application/json",
	})
	if err != nil {
		return nil, err
	}

	// Keep numeric sizes exactly as the service wrote them
	var resp snapshotResponse
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&resp); err != nil {
		return nil, errors.Wrap(err, "failed to decode snapshot response")
	}

	if strings.TrimSpace(resp.DownloadURL) == "" {
		return nil, errors.Wrap(ErrEmptyResponse, "snapshot response has no download url")
	}

	size := "Unknown"
	if resp.Size != nil && resp.Size != "" {
		size = fmt.Sprint(resp.Size)
	}

	return &Result{
		Kind:   KindLink,
		Method: m.Name(),
		Link:   resp.DownloadURL,
		Size:   size,
	}, nil
}
