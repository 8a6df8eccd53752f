// Package tokens estimates token counts for embedding inputs. Counts feed
// cache accounting and pre-flight cost estimation; they never require
// network access.
package tokens
