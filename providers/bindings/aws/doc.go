// Package aws loads credential store bindings from AWS Secrets Manager.
//
// A binding is stored as a JSON secret named "credstore/{alias}/binding"
// whose SecretString holds the same document the platform injects:
//
//	{
//	  "url": "https://credstore.example.com/api/v1/credentials",
//	  "username": "...",
//	  "password": "...",
//	  "encryption": {"client_private_key": "...", "server_public_key": "..."}
//	}
//
// Usage:
//
//	source, err := aws.NewBindingStore(ctx, aws.Config{Alias: "orders-service", Region: "eu-central-1"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	binding, err := source.LoadBinding(ctx)
package aws
