// Package sdk is a Go client for the coderag HTTP API.
//
//	client, _ := sdk.New("http://localhost:8000", sdk.WithAPIKey(os.Getenv("CODERAG_API_KEY")))
//
//	summary, _ := client.Ingest(ctx, sdk.File{Name: "main.go", Data: src})
//	for token, err := range client.Ask(ctx, sessionID, "how is the router wired?") {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Print(token)
//	}
package sdk
