// Package sink persists fetched element sets.
//
// Two backends are provided:
//
//   - FileSink writes one plain-text file per list (<dir>/<name>.txt),
//     replacing it atomically through a rename.
//   - RedisSink stores a JSON Record under <prefix>:<name>, optionally
//     with a TTL, for consumers that read element sets from Redis.
//
// Multi combines backends; a write stops at the first failing backend.
//
// # Basic Usage
//
//	files := sink.NewFileSink("/var/lib/ilrs-tle")
//	records := sink.NewRedisSink(redisClient, sink.DefaultKeyPrefix, 0)
//	out := sink.Multi(files, records)
//
//	if err := out.Write(ctx, "ILRS_active", sink.NormalizeLineEndings(body)); err != nil {
//		return err
//	}
//
// # Metrics
//
//   - tle_sink_writes_total{backend} - Records written
//   - tle_sink_written_bytes_total{backend} - Bytes written
//   - tle_sink_errors_total{backend,operation} - Failed operations
package sink
