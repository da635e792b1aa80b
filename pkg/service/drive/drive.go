package drive

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// Service grants Drive folder access to team members. The engine treats the
// sync as fire-and-forget: failures are logged, never fatal.
type Service interface {
	// SyncFolder ensures every email has writer access to the folder.
	// Existing permissions are never revoked here.
	SyncFolder(ctx context.Context, folderID string, emails []string) error
}

type client struct {
	svc *drive.Service
}

// New creates a Drive service from service account credentials JSON
func New(ctx context.Context, credentialsJSON []byte) (Service, error) {
	svc, err := drive.NewService(ctx,
		option.WithCredentialsJSON(credentialsJSON),
		option.WithScopes(drive.DriveScope),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create drive service")
	}
	return &client{svc: svc}, nil
}

func (c *client) SyncFolder(ctx context.Context, folderID string, emails []string) error {
	if folderID == "" || len(emails) == 0 {
		return nil
	}

	existing, err := c.svc.Permissions.List(folderID).
		Fields("permissions(id,emailAddress,role)").
		SupportsAllDrives(true).
		Context(ctx).Do()
	if err != nil {
		return goerr.Wrap(err, "failed to list folder permissions", goerr.V("folder_id", folderID))
	}

	granted := make(map[string]bool, len(existing.Permissions))
	for _, p := range existing.Permissions {
		granted[p.EmailAddress] = true
	}

	for _, email := range emails {
		if email == "" || granted[email] {
			continue
		}

		_, err := c.svc.Permissions.Create(folderID, &drive.Permission{
			Type:         "user",
			Role:         "writer",
			EmailAddress: email,
		}).
			SupportsAllDrives(true).
			SendNotificationEmail(false).
			Context(ctx).Do()
		if err != nil {
			return goerr.Wrap(err, "failed to grant folder permission",
				goerr.V("folder_id", folderID),
				goerr.V("email", email))
		}
	}

	return nil
}
