// Package httpclient is the outbound HTTP layer shared by every producer
// client (pyannote, whisper, wespeaker) and by the Qdrant store.
//
// An Adapter owns one *http.Client, a base URL, default headers and auth,
// and an optional circuit breaker. Request bodies may be JSON values, raw
// bytes or a MultipartBody for audio uploads. Non-2xx responses come back as
// a classified *Error; Upstream turns any failure into the service-level
// UPSTREAM_UNAVAILABLE or UPSTREAM_TIMEOUT error.
//
//	adapter, err := httpclient.New(httpclient.Config{
//	    Name:    "pyannote",
//	    BaseURL: "http://pyannote:8000",
//	    Timeout: 5 * time.Minute,
//	})
//	resp, err := adapter.Do(ctx, httpclient.Request{
//	    Method: http.MethodPost,
//	    Path:   "/diarize",
//	    Body:   &httpclient.MultipartBody{Files: []httpclient.FileField{{FieldName: "file", Path: audio}}},
//	})
//
// The rest subpackage adds typed JSON helpers on top of an Adapter.
package httpclient
