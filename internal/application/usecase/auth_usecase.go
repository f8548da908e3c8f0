// internal/application/usecase/auth_usecase.go
package usecase

import (
	"context"
	"errors"
	"log"
	"strings"

	custdom "grano/internal/domain/customer"
)

var (
	ErrAuthVerifierMissing   = errors.New("auth: otp verifier is not configured")
	ErrAuthDirectoryMissing  = errors.New("auth: customer directory is not configured")
	ErrAuthResolutionMissing = errors.New("auth: cart resolution usecase is not configured")
	ErrAuthPhoneEmpty        = errors.New("auth: phone is empty")
	ErrAuthStoreNameEmpty    = errors.New("auth: storeName is empty")
	ErrAuthCodeEmpty         = errors.New("auth: otp code is empty")
	ErrAuthNoCustomerID      = errors.New("auth: vendor returned no customer id")
)

// LoginState is the explicit per-attempt login state machine.
type LoginState string

const (
	StatePhoneEntered LoginState = "phone_entered"
	StateOtpRequested LoginState = "otp_requested"
	StateOtpVerified  LoginState = "otp_verified"
	StateOtpRejected  LoginState = "otp_rejected"
)

// CanTransition reports whether from -> to is a legal login transition.
func CanTransition(from, to LoginState) bool {
	switch from {
	case StatePhoneEntered:
		return to == StateOtpRequested
	case StateOtpRequested:
		return to == StateOtpVerified || to == StateOtpRejected
	case StateOtpRejected:
		// a rejected attempt may retry the code or start over
		return to == StateOtpRequested || to == StatePhoneEntered
	default:
		return false
	}
}

// OTPLoginResult is what the vendor reports for one verification call.
// Message is the vendor's own text and is surfaced verbatim on rejection.
type OTPLoginResult struct {
	Success    bool
	Message    string
	CustomerID string
	NewAccount bool
}

// OTPVerifier is the outbound port to the OTP delivery/verification vendor.
// The vendor is an opaque oracle: it owns rate limiting and code lifetimes.
type OTPVerifier interface {
	SendOTP(ctx context.Context, phone, storeName string) error
	Login(ctx context.Context, phone, storeName, code string) (OTPLoginResult, error)
}

// CustomerDirectory is the outbound port for customer lookup on the platform.
// SearchCustomerByPhone returns (nil, nil) when no customer matches.
type CustomerDirectory interface {
	SearchCustomerByPhone(ctx context.Context, phone string) (*custdom.Customer, error)
}

// VerifyOTPInput carries one verification attempt.
type VerifyOTPInput struct {
	Phone       string
	StoreName   string
	Code        string
	GuestCartID string
}

// VerifyOTPResult is returned to the client in one round trip, including the
// final merge outcome when a guest cart id was supplied.
type VerifyOTPResult struct {
	Success      bool
	Message      string
	State        LoginState
	CustomerID   string
	CartID       string
	Merged       bool
	MergedCartID string
	IsNewAccount bool
}

// AuthUsecase verifies OTPs, resolves the canonical customer identity, and
// triggers the cart merge protocol when a guest cart is present.
type AuthUsecase struct {
	verifier   OTPVerifier
	directory  CustomerDirectory
	resolution *CartResolutionUsecase
}

func NewAuthUsecase(verifier OTPVerifier, directory CustomerDirectory, resolution *CartResolutionUsecase) *AuthUsecase {
	return &AuthUsecase{verifier: verifier, directory: directory, resolution: resolution}
}

// RequestOTP forwards the send request to the vendor. No local state is kept;
// the vendor owns rate limiting.
func (u *AuthUsecase) RequestOTP(ctx context.Context, phone, storeName string) error {
	if u == nil || u.verifier == nil {
		return ErrAuthVerifierMissing
	}
	p := custdom.NormalizePhone(phone)
	if p == "" {
		return ErrAuthPhoneEmpty
	}
	if strings.TrimSpace(storeName) == "" {
		return ErrAuthStoreNameEmpty
	}
	return u.verifier.SendOTP(ctx, p, strings.TrimSpace(storeName))
}

// VerifyOTP runs one verification attempt.
//
// On vendor success the canonical identity is resolved: a customer found by
// phone lookup wins over the vendor's returned identity, so both converge on
// one platform customer. When a guest cart id is present the merge path runs
// synchronously before returning.
//
// On vendor rejection the vendor's message is returned verbatim and no
// customer or cart state is touched.
func (u *AuthUsecase) VerifyOTP(ctx context.Context, in VerifyOTPInput) (VerifyOTPResult, error) {
	if u == nil || u.verifier == nil {
		return VerifyOTPResult{}, ErrAuthVerifierMissing
	}
	if u.directory == nil {
		return VerifyOTPResult{}, ErrAuthDirectoryMissing
	}
	if u.resolution == nil {
		return VerifyOTPResult{}, ErrAuthResolutionMissing
	}

	phone := custdom.NormalizePhone(in.Phone)
	storeName := strings.TrimSpace(in.StoreName)
	code := strings.TrimSpace(in.Code)
	if phone == "" {
		return VerifyOTPResult{}, ErrAuthPhoneEmpty
	}
	if storeName == "" {
		return VerifyOTPResult{}, ErrAuthStoreNameEmpty
	}
	if code == "" {
		return VerifyOTPResult{}, ErrAuthCodeEmpty
	}

	vr, err := u.verifier.Login(ctx, phone, storeName, code)
	if err != nil {
		return VerifyOTPResult{}, err
	}
	if !vr.Success {
		log.Printf("[auth_uc] otp rejected phone=%s", phone)
		return VerifyOTPResult{
			Success: false,
			Message: vr.Message,
			State:   StateOtpRejected,
		}, nil
	}

	// Prefer the platform's own record over the vendor's identity.
	customerID := strings.TrimSpace(vr.CustomerID)
	isNew := vr.NewAccount
	found, err := u.directory.SearchCustomerByPhone(ctx, phone)
	if err != nil {
		return VerifyOTPResult{}, err
	}
	if found != nil && strings.TrimSpace(found.ID) != "" {
		if customerID != "" && customerID != found.ID {
			log.Printf("[auth_uc] identity converged phone=%s vendorId=%s platformId=%s",
				phone, customerID, found.ID)
		}
		customerID = found.ID
		isNew = false
	}
	if customerID == "" {
		return VerifyOTPResult{}, ErrAuthNoCustomerID
	}

	res := VerifyOTPResult{
		Success:      true,
		State:        StateOtpVerified,
		CustomerID:   customerID,
		IsNewAccount: isNew,
	}

	guestCartID := strings.TrimSpace(in.GuestCartID)
	if guestCartID != "" {
		r, err := u.resolution.Resolve(ctx, ResolveInput{
			CustomerID:   customerID,
			ClientCartID: guestCartID,
		})
		if err != nil {
			return VerifyOTPResult{}, err
		}
		res.CartID = r.CartID
		res.Merged = r.Merged
		res.MergedCartID = r.MergedCartID
		log.Printf("[auth_uc] login merge done customerId=%s guestCartId=%s cartId=%s merged=%t message=%s",
			customerID, guestCartID, r.CartID, r.Merged, r.Message)
	}

	return res, nil
}
