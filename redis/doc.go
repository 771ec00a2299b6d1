// Package redis connects to the shared Redis server that backs the
// transcription cache when several speakerd replicas run side by side.
//
//	client, _ := redis.New(redis.Config{Addr: "localhost:6379"}, log)
//	store := redis.NewTypedStore[transcript.Transcription](client, "speakerkit:transcription")
package redis
