// Package handlers provides the HTTP handlers of the syllabus service.
package handlers
