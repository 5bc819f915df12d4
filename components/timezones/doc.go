// Package timezones serves IANA zone suggestions to autocomplete fields.
//
// The zone list is embedded from data/iana_timezones.txt. The same search
// backs three surfaces: an in-process choice.Fetcher registered on a
// suggest.Router under Kind, a JSON handler mountable on any mux, and a
// RemoteSource that queries that handler over HTTP. Labels default to the
// zone name; OffsetLabel adds the current UTC offset.
package timezones
