package query

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Options are the engine-side query options sent with each request.
// A nil field is unset and is left out of the encoded form.
type Options struct {
	TimeoutMs                               *int    `option:"timeoutMs" mapstructure:"timeout_ms" json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`
	EnableNullHandling                      *bool   `option:"enableNullHandling" mapstructure:"enable_null_handling" json:"enable_null_handling,omitempty" yaml:"enable_null_handling,omitempty"`
	ExplainPlanVerbose                      *bool   `option:"explainPlanVerbose" mapstructure:"explain_plan_verbose" json:"explain_plan_verbose,omitempty" yaml:"explain_plan_verbose,omitempty"`
	UseMultiStageEngine                     *bool   `option:"useMultiStageEngine" mapstructure:"use_multi_stage_engine" json:"use_multi_stage_engine,omitempty" yaml:"use_multi_stage_engine,omitempty"`
	MaxExecutionThreads                     *int    `option:"maxExecutionThreads" mapstructure:"max_execution_threads" json:"max_execution_threads,omitempty" yaml:"max_execution_threads,omitempty"`
	NumReplicaGroupsToQuery                 *int    `option:"numReplicaGroupsToQuery" mapstructure:"num_replica_groups_to_query" json:"num_replica_groups_to_query,omitempty" yaml:"num_replica_groups_to_query,omitempty"`
	MinSegmentGroupTrimSize                 *int    `option:"minSegmentGroupTrimSize" mapstructure:"min_segment_group_trim_size" json:"min_segment_group_trim_size,omitempty" yaml:"min_segment_group_trim_size,omitempty"`
	MinServerGroupTrimSize                  *int    `option:"minServerGroupTrimSize" mapstructure:"min_server_group_trim_size" json:"min_server_group_trim_size,omitempty" yaml:"min_server_group_trim_size,omitempty"`
	ServerReturnFinalResult                 *bool   `option:"serverReturnFinalResult" mapstructure:"server_return_final_result" json:"server_return_final_result,omitempty" yaml:"server_return_final_result,omitempty"`
	ServerReturnFinalResultKeyUnpartitioned *bool   `option:"serverReturnFinalResultKeyUnpartitioned" mapstructure:"server_return_final_result_key_unpartitioned" json:"server_return_final_result_key_unpartitioned,omitempty" yaml:"server_return_final_result_key_unpartitioned,omitempty"`
	SkipIndexes                             *string `option:"skipIndexes" mapstructure:"skip_indexes" json:"skip_indexes,omitempty" yaml:"skip_indexes,omitempty"`
	SkipUpsert                              *bool   `option:"skipUpsert" mapstructure:"skip_upsert" json:"skip_upsert,omitempty" yaml:"skip_upsert,omitempty"`
	UseStarTree                             *bool   `option:"useStarTree" mapstructure:"use_star_tree" json:"use_star_tree,omitempty" yaml:"use_star_tree,omitempty"`
	AndScanReordering                       *bool   `option:"AndScanReordering" mapstructure:"and_scan_reordering" json:"and_scan_reordering,omitempty" yaml:"and_scan_reordering,omitempty"`
	MaxRowsInJoin                           *int    `option:"maxRowsInJoin" mapstructure:"max_rows_in_join" json:"max_rows_in_join,omitempty" yaml:"max_rows_in_join,omitempty"`
	InPredicatePreSorted                    *bool   `option:"inPredicatePreSorted" mapstructure:"in_predicate_pre_sorted" json:"in_predicate_pre_sorted,omitempty" yaml:"in_predicate_pre_sorted,omitempty"`
	InPredicateLookupAlgorithm              *string `option:"inPredicateLookupAlgorithm" mapstructure:"in_predicate_lookup_algorithm" json:"in_predicate_lookup_algorithm,omitempty" yaml:"in_predicate_lookup_algorithm,omitempty"`
	MaxServerResponseSizeBytes              *int64  `option:"maxServerResponseSizeBytes" mapstructure:"max_server_response_size_bytes" json:"max_server_response_size_bytes,omitempty" yaml:"max_server_response_size_bytes,omitempty"`
	MaxQueryResponseSizeBytes               *int64  `option:"maxQueryResponseSizeBytes" mapstructure:"max_query_response_size_bytes" json:"max_query_response_size_bytes,omitempty" yaml:"max_query_response_size_bytes,omitempty"`
	FilteredAggregationsSkipEmptyGroups     *bool   `option:"filteredAggregationsSkipEmptyGroup" mapstructure:"filtered_aggregations_skip_empty_groups" json:"filtered_aggregations_skip_empty_groups,omitempty" yaml:"filtered_aggregations_skip_empty_groups,omitempty"`
}

// Lookup algorithms accepted by InPredicateLookupAlgorithm.
const (
	LookupDivideBinarySearch = "DIVIDE_BINARY_SEARCH"
	LookupScan               = "SCAN"
	LookupPlainBinarySearch  = "PLAIN_BINARY_SEARCH"
)

// Ptr returns a pointer to v, for filling Options literals.
func Ptr[T any](v T) *T {
	return &v
}

// Merge overlays the set fields of child onto parent.
func Merge(parent, child Options) Options {
	out := parent
	dst := reflect.ValueOf(&out).Elem()
	src := reflect.ValueOf(child)
	for i := 0; i < src.NumField(); i++ {
		if f := src.Field(i); !f.IsNil() {
			dst.Field(i).Set(f)
		}
	}
	return out
}

// IsZero reports whether no option is set.
func (o Options) IsZero() bool {
	rv := reflect.ValueOf(o)
	for i := 0; i < rv.NumField(); i++ {
		if !rv.Field(i).IsNil() {
			return false
		}
	}
	return true
}

// Validate checks enumerated option values.
func (o Options) Validate() error {
	if o.InPredicateLookupAlgorithm != nil {
		switch *o.InPredicateLookupAlgorithm {
		case LookupDivideBinarySearch, LookupScan, LookupPlainBinarySearch:
		default:
			return fmt.Errorf("invalid in predicate lookup algorithm: %s", *o.InPredicateLookupAlgorithm)
		}
	}
	return nil
}

// Encode renders the set options as key=value pairs joined by ';' in
// field order, the form the broker expects in the queryOptions parameter.
func (o Options) Encode() string {
	var pairs []string
	rv := reflect.ValueOf(o)
	rt := rv.Type()
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if f.IsNil() {
			continue
		}
		key := rt.Field(i).Tag.Get("option")
		pairs = append(pairs, key+"="+formatOption(f.Elem()))
	}
	return strings.Join(pairs, ";")
}

func formatOption(v reflect.Value) string {
	switch v.Kind() {
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Int, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	default:
		return v.String()
	}
}
