package connector

import (
	"bytes"
	"net/http"
	"reflect"
	"strings"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/Konsultn-Engineering/pinotconn/dberr"
)

// QueryStatistics are the execution statistics a broker reports next to a
// result table. Fields the broker did not send are nil.
type QueryStatistics struct {
	BrokerID                               *string        `json:"brokerId,omitempty"`
	BrokerReduceTimeMs                     *int64         `json:"brokerReduceTimeMs,omitempty"`
	ExplainPlanNumEmptyFilterSegments      *int64         `json:"explainPlanNumEmptyFilterSegments,omitempty"`
	ExplainPlanNumMatchAllFilterSegments   *int64         `json:"explainPlanNumMatchAllFilterSegments,omitempty"`
	MaxRowsInJoinReached                   *bool          `json:"maxRowsInJoinReached,omitempty"`
	MaxRowsInOperator                      *int64         `json:"maxRowsInOperator,omitempty"`
	MaxRowsInWindowReached                 *bool          `json:"maxRowsInWindowReached,omitempty"`
	MinConsumingFreshnessTimeMs            *int64         `json:"minConsumingFreshnessTimeMs,omitempty"`
	NumConsumingSegmentsMatched            *int64         `json:"numConsumingSegmentsMatched,omitempty"`
	NumConsumingSegmentsProcessed          *int64         `json:"numConsumingSegmentsProcessed,omitempty"`
	NumConsumingSegmentsQueried            *int64         `json:"numConsumingSegmentsQueried,omitempty"`
	NumDocsScanned                         *int64         `json:"numDocsScanned,omitempty"`
	NumEntriesScannedInFilter              *int64         `json:"numEntriesScannedInFilter,omitempty"`
	NumEntriesScannedPostFilter            *int64         `json:"numEntriesScannedPostFilter,omitempty"`
	NumGroupsLimitReached                  *bool          `json:"numGroupsLimitReached,omitempty"`
	NumRowsResultSet                       *int64         `json:"numRowsResultSet,omitempty"`
	NumSegmentsMatched                     *int64         `json:"numSegmentsMatched,omitempty"`
	NumSegmentsProcessed                   *int64         `json:"numSegmentsProcessed,omitempty"`
	NumSegmentsPrunedByBroker              *int64         `json:"numSegmentsPrunedByBroker,omitempty"`
	NumSegmentsPrunedByLimit               *int64         `json:"numSegmentsPrunedByLimit,omitempty"`
	NumSegmentsPrunedByServer              *int64         `json:"numSegmentsPrunedByServer,omitempty"`
	NumSegmentsPrunedByValue               *int64         `json:"numSegmentsPrunedByValue,omitempty"`
	NumSegmentsPrunedInvalid               *int64         `json:"numSegmentsPrunedInvalid,omitempty"`
	NumSegmentsQueried                     *int64         `json:"numSegmentsQueried,omitempty"`
	NumServersQueried                      *int64         `json:"numServersQueried,omitempty"`
	NumServersResponded                    *int64         `json:"numServersResponded,omitempty"`
	OfflineResponseSerializationCpuTimeNs  *int64         `json:"offlineResponseSerializationCpuTimeNs,omitempty"`
	OfflineSystemActivitiesCpuTimeNs       *int64         `json:"offlineSystemActivitiesCpuTimeNs,omitempty"`
	OfflineThreadCpuTimeNs                 *int64         `json:"offlineThreadCpuTimeNs,omitempty"`
	OfflineTotalCpuTimeNs                  *int64         `json:"offlineTotalCpuTimeNs,omitempty"`
	PartialResult                          *bool          `json:"partialResult,omitempty"`
	RealtimeResponseSerializationCpuTimeNs *int64         `json:"realtimeResponseSerializationCpuTimeNs,omitempty"`
	RealtimeSystemActivitiesCpuTimeNs      *int64         `json:"realtimeSystemActivitiesCpuTimeNs,omitempty"`
	RealtimeThreadCpuTimeNs                *int64         `json:"realtimeThreadCpuTimeNs,omitempty"`
	RealtimeTotalCpuTimeNs                 *int64         `json:"realtimeTotalCpuTimeNs,omitempty"`
	RequestID                              *string        `json:"requestId,omitempty"`
	SegmentStatistics                      []any          `json:"segmentStatistics,omitempty"`
	StageStats                             map[string]any `json:"stageStats,omitempty"`
	StateStats                             map[string]any `json:"stateStats,omitempty"`
	TablesQueried                          []string       `json:"tablesQueried,omitempty"`
	TimeUsedMs                             *int64         `json:"timeUsedMs,omitempty"`
	TotalDocs                              *int64         `json:"totalDocs,omitempty"`
	TraceInfo                              map[string]any `json:"traceInfo,omitempty"`
}

type brokerResponse struct {
	QueryStatistics
	ResultTable *resultTable
	Exceptions  []brokerException
}

type resultTable struct {
	DataSchema struct {
		ColumnNames     []string `json:"columnNames"`
		ColumnDataTypes []string `json:"columnDataTypes"`
	} `json:"dataSchema"`
	Rows [][]any `json:"rows"`
}

type brokerException struct {
	ErrorCode int    `json:"errorCode"`
	Message   string `json:"message"`
}

// decodeResponse classifies a broker reply. A result table wins over
// exceptions, which win over the HTTP status. Statistics never fail a
// reply.
func decodeResponse(status int, body []byte) (*brokerResponse, error) {
	var fields map[string]json.RawMessage
	decodeErr := json.Unmarshal(body, &fields)

	if decodeErr == nil {
		var br brokerResponse
		decodeErr = decodeField(fields["resultTable"], &br.ResultTable)
		if decodeErr == nil && br.ResultTable != nil {
			br.QueryStatistics = decodeStatistics(fields)
			return &br, nil
		}
		if err := decodeField(fields["exceptions"], &br.Exceptions); err == nil && len(br.Exceptions) > 0 {
			e := br.Exceptions[0]
			return nil, dberr.FromCode(e.ErrorCode, e.Message)
		}
	}

	if status >= http.StatusBadRequest {
		return nil, statusError(status, body)
	}
	if decodeErr != nil {
		return nil, dberr.Wrap(dberr.Interface, decodeErr, "invalid response body")
	}
	return nil, dberr.New(dberr.Interface, "response has neither a result table nor exceptions")
}

// decodeField decodes one top-level member, keeping numbers as json.Number.
// A missing member leaves dst untouched.
func decodeField(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(dst)
}

// statisticsFields maps each json key of QueryStatistics to its field index.
var statisticsFields = sync.OnceValue(func() map[string]int {
	t := reflect.TypeFor[QueryStatistics]()
	out := make(map[string]int, t.NumField())
	for i := range t.NumField() {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		out[name] = i
	}
	return out
})

// decodeStatistics picks the known statistics out of a reply one key at a
// time. A value of an unexpected type is dropped.
func decodeStatistics(fields map[string]json.RawMessage) QueryStatistics {
	var stats QueryStatistics
	rv := reflect.ValueOf(&stats).Elem()
	for name, i := range statisticsFields() {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		f := rv.Field(i)
		if err := decodeField(raw, f.Addr().Interface()); err != nil {
			f.SetZero()
		}
	}
	return stats
}

func statusError(status int, body []byte) error {
	switch {
	case status >= http.StatusInternalServerError:
		return dberr.New(dberr.Operational, "server error [%d]: %s", status, body)
	case status == http.StatusBadRequest:
		return dberr.New(dberr.Programming, "query error [%d]: %s", status, body)
	}
	return dberr.New(dberr.Programming, "unexpected HTTP error [%d]: %s", status, body)
}

// checkServersResponded fails when fewer servers answered than were queried.
// A missing count reads as -1.
func checkServersResponded(stats *QueryStatistics) error {
	queried, responded := int64(-1), int64(-1)
	if stats.NumServersQueried != nil {
		queried = *stats.NumServersQueried
	}
	if stats.NumServersResponded != nil {
		responded = *stats.NumServersResponded
	}
	if queried != responded {
		return dberr.New(dberr.Database, "queried %d server(s), but %d responded", queried, responded)
	}
	return nil
}
