//go:build protogen

package meeting

import (
	"context"
	"time"

	"github.com/ImadGanwa/AcademyAi-sub003/internal/grpcx"
	meetingsv1 "github.com/ImadGanwa/AcademyAi-sub003/protos/gen/meetings/v1"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// GRPCProvisioner is the production client for the meetings service. Build
// with -tags protogen after generating the protos.
type GRPCProvisioner struct {
	client meetingsv1.MeetingsServiceClient
}

func NewGRPCProvisioner(addr string) (*GRPCProvisioner, error) {
	conn, err := grpcx.Dial(context.Background(), addr, grpcx.DialOptions{Timeout: 3 * time.Second})
	if err != nil {
		return nil, err
	}
	return &GRPCProvisioner{client: meetingsv1.NewMeetingsServiceClient(conn)}, nil
}

func (p *GRPCProvisioner) Create(ctx context.Context, req Request) (Meeting, error) {
	resp, err := p.client.CreateMeeting(ctx, &meetingsv1.CreateMeetingRequest{
		Topic:           req.Topic,
		Start:           timestamppb.New(req.Start),
		DurationMinutes: int32(req.DurationMinutes),
		MentorEmail:     req.MentorEmail,
		MenteeEmail:     req.MenteeEmail,
	})
	if err != nil {
		return Meeting{}, err
	}
	return Meeting{ID: resp.GetId(), JoinURL: resp.GetJoinUrl()}, nil
}

func (p *GRPCProvisioner) Delete(ctx context.Context, externalID string) error {
	_, err := p.client.DeleteMeeting(ctx, &meetingsv1.DeleteMeetingRequest{Id: externalID})
	return err
}
