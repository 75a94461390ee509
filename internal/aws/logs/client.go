package logs

import (
	"context"
	"iter"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"

	"tasnim.dev/opfyx/internal/aws/awserr"
	"tasnim.dev/opfyx/internal/paginate"
)

// CloudWatchLogsAPI defines the subset of CloudWatch Logs API we use.
type CloudWatchLogsAPI interface {
	GetLogEvents(ctx context.Context, params *cloudwatchlogs.GetLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.GetLogEventsOutput, error)
}

// Client wraps the CloudWatch Logs API.
type Client struct {
	api CloudWatchLogsAPI
}

// NewClient creates a new logs client.
func NewClient(api CloudWatchLogsAPI) *Client {
	return &Client{api: api}
}

// MaxLimit is the largest page GetLogEvents accepts.
const MaxLimit = 10000

// Events reads a log stream forward, one GetLogEvents call per page.
//
// GetLogEvents never omits the forward token; it signals the end of the
// stream by handing back the token it was called with, which is mapped to
// an empty token so the listing stops. Empty pages do not end the stream.
func (c *Client) Events(ctx context.Context, q StreamQuery) iter.Seq2[[]LogEvent, error] {
	return paginate.Pages[StreamQuery, []LogEvent](ctx, q, paginate.FetcherFunc[StreamQuery, []LogEvent](c.eventPage))
}

func (c *Client) eventPage(ctx context.Context, q StreamQuery, token string) ([]LogEvent, StreamQuery, string, error) {
	in := &cloudwatchlogs.GetLogEventsInput{
		LogGroupName:  aws.String(q.Group),
		LogStreamName: aws.String(q.Stream),
		StartFromHead: aws.Bool(q.FromHead),
	}
	if q.Limit > 0 {
		in.Limit = aws.Int32(int32(min(q.Limit, MaxLimit)))
	}
	if token != "" {
		in.NextToken = aws.String(token)
		in.StartFromHead = aws.Bool(true)
	}

	out, err := c.api.GetLogEvents(ctx, in)
	if err != nil {
		return nil, q, "", awserr.Wrap("GetLogEvents", err)
	}

	events := make([]LogEvent, len(out.Events))
	for i, e := range out.Events {
		events[i] = LogEvent{
			Timestamp: time.UnixMilli(aws.ToInt64(e.Timestamp)),
			Message:   aws.ToString(e.Message),
		}
	}

	next := aws.ToString(out.NextForwardToken)
	if next == token {
		next = ""
	}
	return events, q, next, nil
}
