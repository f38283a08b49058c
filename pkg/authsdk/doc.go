/*
Package authsdk provides the wire types and a Go client for the huproof
keystroke authentication service.

# Overview

A huproof login never sends the keystroke template. The client commits to
the template once at enrollment, and afterwards proves in zero knowledge that
a fresh sample is within tau of the committed template. The service only sees
the commitment, the public inputs and the proof.

	client := authsdk.NewSDKClient("https://auth.example.com", "https://app.example.com")

# Enrollment

	ch, err := client.EnrollStart(ctx)

	res, err := authsdk.Calibrate(samples, ch.Tau)
	// commit to res.Template and prove with res.Tau (circuit specific)

	out, err := client.EnrollFinish(ctx, authsdk.EnrollFinishRequest{
		Commitment:   commitment,
		PublicInputs: authsdk.PublicInputsFor(ch, res.Tau, commitment, sig),
		Proof:        proof,
	})
	// out.UserID identifies the new user

# Login

	ch, err := client.LoginStart(ctx, userID)
	// ch.Commitment and ch.Tau are what the proof must be generated against

	tok, err := client.LoginFinish(ctx, authsdk.LoginFinishRequest{
		PublicInputs: authsdk.PublicInputsFor(ch, ch.Tau, ch.Commitment, sig),
		Proof:        proof,
	})

	who, err := client.Session(ctx, tok.Token)
	err = client.Logout(ctx, tok.Token)

# Errors

Every non-2xx reply is returned as an *APIError:

	if authsdk.IsCode(err, authsdk.ErrorCodeVerificationUnavailable) {
		// retry the same finish call later
	}

Rejected protocol steps all come back as invalid_request with the same
description, whichever check failed.
*/
package authsdk
