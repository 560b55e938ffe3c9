// Package api provides the workflow provisioning REST API.
//
//	@title						Flowplane API
//	@version					1.0
//	@description				Provisions per-tenant copies of catalog workflows into the workflow engine and controls their activation.
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package api
