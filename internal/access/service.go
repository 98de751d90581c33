package access

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"time"

	"github.com/lab-portal/backend/internal/models"
	"github.com/lab-portal/backend/internal/notify"
	"github.com/lab-portal/backend/internal/store"
	"github.com/lab-portal/backend/internal/zerotier"
)

// CodeUploader pushes the regenerated access-code table to the agent.
type CodeUploader interface {
	UploadAccessCodes(ctx context.Context, table models.AccessTable) error
}

// ErrAlreadyRequested is returned when a user with a pending or
// approved request asks again.
var ErrAlreadyRequested = errors.New("access already requested")

// Service drives the access workflow. The user store is the system of
// record; email, network authorization, and the code upload are side
// channels whose failures are logged but never rolled back.
type Service struct {
	store      store.UserStore
	uploader   CodeUploader
	mailer     notify.Mailer
	authorizer zerotier.Authorizer

	adminName    string
	adminEmail   string
	subnetPrefix string
	rng          *rand.Rand

	// dispatch hands a message to the relay; tests swap it for an
	// inline delivery.
	dispatch func(m notify.Mailer, to, subject, body string)
}

// Config carries the service's collaborators and settings.
type Config struct {
	Store      store.UserStore
	Uploader   CodeUploader
	Mailer     notify.Mailer
	Authorizer zerotier.Authorizer
	AdminName  string
	AdminEmail string
	// SubnetPrefix defaults to DefaultSubnetPrefix.
	SubnetPrefix string
	// Seed fixes the access-code RNG; 0 seeds from the clock.
	Seed int64
}

// NewService wires a workflow service.
func NewService(cfg Config) *Service {
	prefix := cfg.SubnetPrefix
	if prefix == "" {
		prefix = DefaultSubnetPrefix
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Service{
		store:        cfg.Store,
		uploader:     cfg.Uploader,
		mailer:       cfg.Mailer,
		authorizer:   cfg.Authorizer,
		adminName:    cfg.AdminName,
		adminEmail:   cfg.AdminEmail,
		subnetPrefix: prefix,
		rng:          rand.New(rand.NewSource(seed)),
		dispatch:     notify.SendAsync,
	}
}

// SuggestCredentials allocates the next free address and an unused
// access code for the approval form.
func (s *Service) SuggestCredentials(ctx context.Context) (ip, code string, err error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return "", "", err
	}
	ip, err = NextAvailableIP(users, s.subnetPrefix)
	if err != nil {
		return "", "", err
	}
	return ip, NewAccessCode(s.rng, users), nil
}

// Request records a pending access request and notifies both the
// requester and the administrator.
func (s *Service) Request(ctx context.Context, userID, zerotierID string) error {
	if zerotierID == "" {
		return errors.New("zerotier id is required")
	}

	user, err := s.store.Get(ctx, userID)
	if err != nil {
		return err
	}
	if user.HasAccess() || user.PendingRequest() {
		return ErrAlreadyRequested
	}

	if err := s.store.SetZerotierID(ctx, userID, zerotierID); err != nil {
		return err
	}

	s.sendMail(user.Email, "Server Access Request",
		notify.Template(user.Name, notify.RequestReceivedBody(zerotierID)))
	s.sendMail(s.adminEmail, "Server Access Request",
		notify.Template(s.adminName, notify.RequestAdminBody(user.Name, zerotierID)))
	return nil
}

// Approve issues credentials to a pending request: the record update
// comes first, then email, network authorization, and the access-code
// re-upload. Side-channel failures leave the grant in place.
func (s *Service) Approve(ctx context.Context, userID, ip, serverCode, sshFolder string) error {
	if ip == "" || serverCode == "" || sshFolder == "" {
		return errors.New("ip, access code and ssh folder are required")
	}

	user, err := s.store.Get(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.store.GrantAccess(ctx, userID, ip, serverCode, sshFolder); err != nil {
		return err
	}

	s.sendMail(user.Email, "Server Access Request",
		notify.Template(user.Name, notify.ApprovedBody(ip, serverCode, sshFolder)))

	if err := s.authorizer.Authorize(ctx, user.ZerotierID, ip, sshFolder); err != nil {
		log.Printf("authorizing member %s failed: %v", user.ZerotierID, err)
	}
	s.uploadAccessCodes(ctx)
	return nil
}

// Reject removes a pending request. The rejection email goes out first;
// if it fails the request marker is still cleared.
func (s *Service) Reject(ctx context.Context, userID string) error {
	user, err := s.store.Get(ctx, userID)
	if err != nil {
		return err
	}

	s.sendMail(user.Email, "Server Access Request",
		notify.Template(user.Name, notify.RejectedBody()))

	return s.store.ClearZerotierID(ctx, userID)
}

// Revoke withdraws issued credentials, deauthorizes the member, and
// re-uploads the shrunken access-code table.
func (s *Service) Revoke(ctx context.Context, userID string) error {
	user, err := s.store.Get(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.store.RevokeAccess(ctx, userID); err != nil {
		return err
	}

	s.sendMail(user.Email, "Server Access Revoked",
		notify.Template(user.Name, notify.RevokedBody()))

	if err := s.authorizer.Deauthorize(ctx, user.ZerotierID); err != nil {
		log.Printf("deauthorizing member %s failed: %v", user.ZerotierID, err)
	}
	s.uploadAccessCodes(ctx)
	return nil
}

// Update edits the credential fields of an already-approved user and
// re-uploads the access-code table. No notification is sent.
func (s *Service) Update(ctx context.Context, userID, ip, serverCode, sshFolder string) error {
	if ip == "" || serverCode == "" || sshFolder == "" {
		return errors.New("ip, access code and ssh folder are required")
	}
	if err := s.store.GrantAccess(ctx, userID, ip, serverCode, sshFolder); err != nil {
		return err
	}
	s.uploadAccessCodes(ctx)
	return nil
}

func (s *Service) uploadAccessCodes(ctx context.Context) {
	table, err := s.store.AccessCodes(ctx)
	if err != nil {
		log.Printf("exporting access codes failed: %v", err)
		return
	}
	if err := s.uploader.UploadAccessCodes(ctx, table); err != nil {
		log.Printf("uploading access codes failed: %v", err)
	}
}

// sendMail dispatches without waiting for the relay, so a slow mail
// endpoint never stalls the workflow call it rides on.
func (s *Service) sendMail(to, subject, body string) {
	if s.mailer == nil || to == "" {
		return
	}
	s.dispatch(s.mailer, to, subject, body)
}
