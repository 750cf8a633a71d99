/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/emersion/go-vcard"
	"github.com/skip2/go-qrcode"

	"github.com/humaidq/medcenter/db"
)

// VCardContentType is the media type of exported contact cards.
const VCardContentType = "text/vcard; charset=utf-8"

// PatientVCard builds a vCard 4.0 contact for a patient. Full names are
// split as family name, given name and patronymic.
func PatientVCard(patient *db.Patient) vcard.Card {
	card := make(vcard.Card)

	card.SetValue(vcard.FieldUID, "urn:uuid:"+patient.ID.String())
	card.SetValue(vcard.FieldFormattedName, patient.FullName)

	name := &vcard.Name{}
	parts := strings.Fields(patient.FullName)
	if len(parts) > 0 {
		name.FamilyName = parts[0]
	}
	if len(parts) > 1 {
		name.GivenName = parts[1]
	}
	if len(parts) > 2 {
		name.AdditionalName = strings.Join(parts[2:], " ")
	}
	card.AddName(name)

	if !patient.BirthDate.IsZero() {
		card.SetValue(vcard.FieldBirthday, patient.BirthDate.Format("20060102"))
	}

	if patient.Gender != nil {
		switch *patient.Gender {
		case db.GenderMale:
			card.SetValue(vcard.FieldGender, "M")
		case db.GenderFemale:
			card.SetValue(vcard.FieldGender, "F")
		}
	}

	if patient.Phone != "" {
		card.Add(vcard.FieldTelephone, &vcard.Field{
			Value:  patient.Phone,
			Params: vcard.Params{vcard.ParamType: []string{"cell"}},
		})
	}

	if patient.Email != "" {
		card.Add(vcard.FieldEmail, &vcard.Field{
			Value:  patient.Email,
			Params: vcard.Params{vcard.ParamType: []string{"home"}},
		})
	}

	if patient.Address != "" {
		card.AddAddress(&vcard.Address{StreetAddress: patient.Address})
	}

	vcard.ToV4(card)

	return card
}

// EncodeVCard serializes a card.
func EncodeVCard(card vcard.Card) ([]byte, error) {
	var buf bytes.Buffer
	if err := vcard.NewEncoder(&buf).Encode(card); err != nil {
		return nil, fmt.Errorf("failed to encode vcard: %w", err)
	}
	return buf.Bytes(), nil
}

// PatientQRCode returns a PNG QR code holding the patient's vCard.
func PatientQRCode(patient *db.Patient) ([]byte, error) {
	data, err := EncodeVCard(PatientVCard(patient))
	if err != nil {
		return nil, err
	}

	png, err := qrcode.Encode(string(data), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}

	return png, nil
}

// WithPatientQRCode attaches the patient's QR code to a document. Failures
// are logged and leave the document unchanged.
func WithPatientQRCode(doc *Document, patient *db.Patient) *Document {
	png, err := PatientQRCode(patient)
	if err != nil {
		logger.Warn("Failed to generate patient QR code", "patient_id", patient.ID, "error", err)
		return doc
	}
	doc.Image = png
	return doc
}
