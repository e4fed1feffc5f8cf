// Package migrations embeds the SQL schema for every supported database
// driver and applies it with goose. The version table is schema_migrations
// for all dialects.
package migrations
