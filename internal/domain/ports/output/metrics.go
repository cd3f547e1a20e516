package ports

import "time"

type MetricsProvider interface {
	IncrementHTTPRequests(method, route, status string)
	RecordHTTPRequestDuration(method, route, status string, duration time.Duration)
	IncrementActiveRequests()
	DecrementActiveRequests()

	IncrementDatabaseQueries(queryType string, success bool)
	RecordDatabaseQueryDuration(queryType string, duration time.Duration)

	IncrementPostOperations(operation string, success bool)
	IncrementReadOperations(operation string, success bool)
	IncrementAuthOperations(operation string, success bool)
	IncrementMediaOperations(operation string, success bool)

	SetServiceHealth(healthy bool)
}
