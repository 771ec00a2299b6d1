// Package api exposes the speaker service over HTTP.
//
// Every audio endpoint accepts a multipart upload in the "file" field. The
// upload is staged to disk, handed to the service by path and removed when
// the request ends. Responses are plain JSON objects; failures use the
// AppError envelope rendered by server.RespondWithError.
//
//	h := api.NewHandler(svc, stager, api.Info{Version: "1.0.0"}, log)
//	api.RegisterRoutes(engine, h)
package api
