// Package rest sends JSON requests over an httpclient.Adapter. The Qdrant
// store and speakerctl use it:
//
//	client, _ := rest.New(httpclient.Config{Name: "qdrant", BaseURL: url})
//	var out queryResponse
//	err := client.Post(ctx, "/collections/speakers/points/query", body, &out)
package rest
