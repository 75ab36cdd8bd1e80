package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"
	"pantry/internal/misc"
)

// FCM rejects payloads above 4KB, the notification body is cut well below that.
const fcmBodyMaxRunes = 1000

type FCMSendResponse struct {
	Success int             `json:"success"`
	Failure int             `json:"failure"`
	Results []FCMSendResult `json:"results"`
}

type FCMSendResult struct {
	Error *string `json:"error"`
}

type FCMSendRequest struct {
	Notification    FCMNotification `json:"notification"`
	Data            FCMData         `json:"data"`
	RegistrationIDs []string        `json:"registration_ids"`
}

type FCMNotification struct {
	Title       string `json:"title"`
	Body        string `json:"body"`
	ClickAction string `json:"click_action"`
	Sound       string `json:"sound"`
}

type FCMData struct {
	Kind string `json:"kind"`
}

func (c Client) FCMSendNotification(ctx context.Context, fcmReqBody FCMSendRequest) (FCMSendResponse, error) {
	reqBody, err := json.Marshal(fcmReqBody)
	if err != nil {
		return FCMSendResponse{}, errors.Wrapf(err, "FCMSendNotification: FCMSendRequest JSON marshalling error, req: %+v", fcmReqBody)
	}

	req, err := newRequest(ctx, http.MethodPost, c.fcmEndpoint(), bytes.NewReader(reqBody))
	if err != nil {
		return FCMSendResponse{}, errors.Wrapf(err, "FCMSendNotification: error creating HTTP request from body: %s", reqBody)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+c.FCMKey)

	resp, err := c.Client.Do(req)
	if err != nil {
		return FCMSendResponse{}, errors.Wrapf(err, "FCMSendNotification: error doing request to: %s", req.URL)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.Logger.Errorf("FCMSendNotification: error closing response body, url: %s, err: %v", req.URL, err)
		}
	}()

	respBody, err := io.ReadAll(http.MaxBytesReader(nil, resp.Body, maxResponseBytes))
	if err != nil {
		return FCMSendResponse{}, errors.Wrapf(err, "FCMSendNotification: error reading FCMSendAPI response body, url: %s", req.URL)
	}
	if resp.StatusCode != http.StatusOK {
		return FCMSendResponse{}, errors.Errorf("FCMSendNotification: unexpected status: %d, response body: %s",
			resp.StatusCode, misc.BytesLimit(respBody, 200))
	}

	fcmSendResp := FCMSendResponse{}
	err = json.Unmarshal(respBody, &fcmSendResp)
	return fcmSendResp, errors.Wrapf(err,
		"FCMSendNotification: error unmarshalling FCMSendAPI response body: %s", misc.BytesLimit(respBody, 200))
}

// FCMSharer shares text as a push notification to the household's devices.
type FCMSharer struct {
	Client       Client
	DeviceTokens []string
}

func (s FCMSharer) Available() bool {
	return s.Client.FCMKey != "" && len(s.DeviceTokens) > 0
}

// Share reports delivered when at least one device accepted the message. When
// every device rejected it the share counts as canceled.
func (s FCMSharer) Share(ctx context.Context, title string, text string) (bool, error) {
	if !s.Available() {
		return false, errors.New("FCM sharing is not configured")
	}
	resp, err := s.Client.FCMSendNotification(ctx, FCMSendRequest{
		Notification: FCMNotification{
			Title: title,
			Body:  misc.StringLimit(text, fcmBodyMaxRunes),
			Sound: "default",
		},
		Data:            FCMData{Kind: "shopping_list"},
		RegistrationIDs: s.DeviceTokens,
	})
	if err != nil {
		return false, err
	}
	for _, r := range resp.Results {
		if r.Error != nil {
			s.Client.Logger.Debugf("Share: Device rejected shopping list, err: %s", *r.Error)
		}
	}
	s.Client.Logger.Infof("Share: Shopping list sent, success: %d, failure: %d", resp.Success, resp.Failure)
	return resp.Success > 0, nil
}
