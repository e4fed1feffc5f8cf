// Package api handles incoming HTTP requests for diaries: routing parameters,
// request validation and response formatting. Handlers translate service
// errors to status codes with MapErrorToStatusCode and never expose raw
// error text to clients. Diary content is never logged.
package api
