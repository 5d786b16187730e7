// Package report summarizes a walk as markdown and sanitized HTML.
package report
