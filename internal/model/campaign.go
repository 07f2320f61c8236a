package model

import (
	"strconv"
	"strings"
)

// Fuzzer selects the statement generator run inside the target.
type Fuzzer string

// Supported fuzzers.
const (
	FuzzerSQLSmith          Fuzzer = "sqlsmith"
	FuzzerDuckFuzz          Fuzzer = "duckfuzz"
	FuzzerDuckFuzzFunctions Fuzzer = "duckfuzz_functions"
)

// PrintableName is the name used in filed issues.
func (f Fuzzer) PrintableName() string {
	switch f {
	case FuzzerSQLSmith:
		return "SQLSmith"
	case FuzzerDuckFuzz:
		return "DuckFuzz"
	case FuzzerDuckFuzzFunctions:
		return "DuckFuzz (Functions)"
	default:
		return "Unknown"
	}
}

// CampaignParams parameterizes the fuzzer invocation statement.
type CampaignParams struct {
	MaxQueries      int
	MaxQueryLength  int
	Seed            int64
	Verification    bool
	LastLogPath     string
	CompleteLogPath string
}

// InvocationStatement renders the statement that starts a campaign.
func (f Fuzzer) InvocationStatement(p CampaignParams) string {
	var template string

	switch f {
	case FuzzerSQLSmith:
		template = "call sqlsmith(max_queries=${MAX_QUERIES}, max_query_length=${MAX_QUERY_LENGTH}, seed=${SEED}, verbose_output=1, log='${LAST_LOG_FILE}', complete_log='${COMPLETE_LOG_FILE}');"
	case FuzzerDuckFuzz:
		template = "call fuzzyduck(max_queries=${MAX_QUERIES}, max_query_length=${MAX_QUERY_LENGTH}, seed=${SEED}, verbose_output=1, log='${LAST_LOG_FILE}', complete_log='${COMPLETE_LOG_FILE}', enable_verification='${ENABLE_VERIFICATION}');"
	case FuzzerDuckFuzzFunctions:
		template = "call fuzz_all_functions(seed=${SEED}, max_query_length=${MAX_QUERY_LENGTH}, verbose_output=1, log='${LAST_LOG_FILE}', complete_log='${COMPLETE_LOG_FILE}');"
	default:
		return ""
	}

	verification := "False"
	if p.Verification {
		verification = "True"
	}

	return strings.NewReplacer(
		"${MAX_QUERIES}", strconv.Itoa(p.MaxQueries),
		"${MAX_QUERY_LENGTH}", strconv.Itoa(p.MaxQueryLength),
		"${SEED}", strconv.FormatInt(p.Seed, 10),
		"${LAST_LOG_FILE}", p.LastLogPath,
		"${COMPLETE_LOG_FILE}", p.CompleteLogPath,
		"${ENABLE_VERIFICATION}", verification,
	).Replace(template)
}

// Dataset selects the database state a campaign runs against.
type Dataset string

// Supported datasets.
const (
	DatasetAllTypes      Dataset = "alltypes"
	DatasetTPCH          Dataset = "tpch"
	DatasetEmptyAllTypes Dataset = "emptyalltypes"
)

// SetupStatement returns the statement that prepares the dataset.
func (d Dataset) SetupStatement() string {
	switch d {
	case DatasetAllTypes:
		return "create table all_types as select * exclude(small_enum, medium_enum, large_enum) from test_all_types();"
	case DatasetTPCH:
		return "call dbgen(sf=0.1);"
	case DatasetEmptyAllTypes:
		return "create table all_types as select * exclude(small_enum, medium_enum, large_enum) from test_all_types() limit 0;"
	default:
		return ""
	}
}
