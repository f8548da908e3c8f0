// internal/platform/di/store/secret_provider_sm.go
package store

import (
	"context"
	"errors"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	secretmanagerpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

var errSecretProviderNotConfigured = errors.New("di.store: secret manager client not configured")

// accessSecret resolves one Secret Manager secret value.
// name may be a full resource name ("projects/.../secrets/.../versions/...")
// or a bare secret id, which is expanded against projectID with version latest.
func accessSecret(ctx context.Context, sm *secretmanager.Client, projectID, name string) (string, error) {
	if sm == nil {
		return "", errSecretProviderNotConfigured
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("di.store: secret name is empty")
	}
	if !strings.HasPrefix(name, "projects/") {
		prj := strings.TrimSpace(projectID)
		if prj == "" {
			return "", errors.New("di.store: projectID is empty for bare secret id " + name)
		}
		name = "projects/" + prj + "/secrets/" + name + "/versions/latest"
	}

	resp, err := sm.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return "", errors.New("di.store: AccessSecretVersion failed (" + name + "): " + err.Error())
	}
	if resp == nil || resp.Payload == nil {
		return "", errors.New("di.store: empty payload (" + name + ")")
	}

	return strings.TrimSpace(string(resp.Payload.Data)), nil
}
