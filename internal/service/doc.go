// Package service contains the diary use cases. It coordinates the diary
// repository with the analysis pipeline, which it reaches only through
// events.EventEmitter, and provides the task.ResultSink that writes
// analysis outcomes back.
//
// Services receive their dependencies through constructor injection and
// never depend on a specific database driver. Store errors are translated
// to service sentinels (ErrDiaryNotFound) or wrapped in DiaryServiceError
// so the API layer can map them to status codes.
package service
