// Package calendar provides a client for the Google Calendar API.
//
// Example usage:
//
//	client, err := calendar.NewClient(ctx, option.WithHTTPClient(httpClient))
//	if err != nil {
//	    return err
//	}
//
//	// Upcoming week on the primary calendar
//	events, err := client.ListEvents(ctx, calendar.PrimaryCalendar, calendar.EventQuery{
//	    TimeMin: time.Now(),
//	    TimeMax: time.Now().AddDate(0, 0, 7),
//	})
package calendar
