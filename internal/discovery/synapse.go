package discovery

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/replwatch/replwatch/internal/errors"
	"github.com/replwatch/replwatch/internal/models"
)

const synapseRequestTimeout = 10 * time.Second

// SynapseClient reads backend availability from the HAProxy statistics
// endpoint exposed by a Synapse proxy. Each namespace is an HAProxy
// backend pool named with the encoded namespace ID; a backend row in
// state UP counts as one available instance.
type SynapseClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewSynapseClient creates a client for the Synapse HAProxy stats page at
// hostPort (e.g. "localhost:3212").
func NewSynapseClient(hostPort string) *SynapseClient {
	return &SynapseClient{
		baseURL:    fmt.Sprintf("http://%s/;csv;norefresh", hostPort),
		httpClient: &http.Client{Timeout: synapseRequestTimeout},
	}
}

// AvailableBackends fetches the stats page once and counts UP backends
// for every requested namespace. Pools HAProxy has never heard of stay
// absent from the result; pools it knows with zero healthy backends are
// present with a zero count.
func (c *SynapseClient) AvailableBackends(ctx context.Context, namespaces []string) (models.AvailabilityMap, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, errors.WrapDiscoveryError("fetch_haproxy_stats", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.WrapDiscoveryError("fetch_haproxy_stats", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.WrapDiscoveryError("fetch_haproxy_stats",
			fmt.Errorf("unexpected status %d from %s", resp.StatusCode, c.baseURL))
	}

	counts, err := parseHAProxyStats(resp.Body, namespaces)
	if err != nil {
		return nil, errors.WrapDiscoveryError("parse_haproxy_stats", err)
	}

	log.Debug().Int("namespaces", len(counts)).Msg("Fetched availability snapshot from synapse")
	return counts, nil
}

// parseHAProxyStats counts UP server rows per pool for the requested
// namespaces. The stats CSV starts with a "# pxname,svname,..." header;
// FRONTEND/BACKEND summary rows mark a pool as known without contributing
// to its count.
func parseHAProxyStats(r io.Reader, namespaces []string) (models.AvailabilityMap, error) {
	wanted := make(map[string]struct{}, len(namespaces))
	for _, name := range namespaces {
		wanted[name] = struct{}{}
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read stats header: %w", err)
	}
	pxIdx, svIdx, statusIdx := -1, -1, -1
	for i, field := range header {
		switch strings.TrimPrefix(strings.TrimSpace(field), "# ") {
		case "pxname":
			pxIdx = i
		case "svname":
			svIdx = i
		case "status":
			statusIdx = i
		}
	}
	if pxIdx < 0 || svIdx < 0 || statusIdx < 0 {
		return nil, fmt.Errorf("stats header missing pxname/svname/status columns")
	}

	counts := make(models.AvailabilityMap)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read stats row: %w", err)
		}
		if len(record) <= pxIdx || len(record) <= svIdx || len(record) <= statusIdx {
			continue
		}
		pool := record[pxIdx]
		if _, ok := wanted[pool]; !ok {
			continue
		}
		if _, seen := counts[pool]; !seen {
			counts[pool] = 0
		}
		server := record[svIdx]
		if server == "FRONTEND" || server == "BACKEND" {
			continue
		}
		if strings.HasPrefix(record[statusIdx], "UP") {
			counts[pool]++
		}
	}
	return counts, nil
}
