package mailer

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys
const (
	keyVerificationSubject      = "verification.subject"
	keyVerificationGreeting     = "verification.greeting"
	keyVerificationIntro        = "verification.intro"
	keyVerificationCode         = "verification.code_label"
	keyVerificationValidity     = "verification.validity"
	keyVerificationNoExpiry     = "verification.no_expiry"
	keyVerificationIgnore       = "verification.ignore"
	keyVerificationMistake      = "verification.mistake"
	keyVerificationText         = "verification.text"
	keyVerificationTextNoExpiry = "verification.text_no_expiry"
	keyWelcomeSubject           = "welcome.subject"
	keyWelcomeGreeting          = "welcome.greeting"
	keyWelcomeIntro             = "welcome.intro"
	keyWelcomeSummary           = "welcome.summary"
	keyWelcomeFeatureTours      = "welcome.feature.tours"
	keyWelcomeFeatureModels     = "welcome.feature.models"
	keyWelcomeFeatureNotes      = "welcome.feature.notes"
	keyWelcomeFeatureTeams      = "welcome.feature.teams"
	keyWelcomeSupport           = "welcome.support"
	keyWelcomeClosing           = "welcome.closing"
	keyWelcomeText              = "welcome.text"
	keySignatureThanks          = "signature.thanks"
	keySignatureTeam            = "signature.team"
)

var supportedTags = []language.Tag{
	language.BrazilianPortuguese,
	language.English,
}

var matcher = language.NewMatcher(supportedTags)

func init() {
	pt := language.BrazilianPortuguese

	message.SetString(pt, keyVerificationSubject, "Código de Verificação")
	message.SetString(pt, keyVerificationGreeting, "Olá!")
	message.SetString(pt, keyVerificationIntro, "Nós recebemos uma solicitação para um código de validação para a sua conta na %s.")
	message.SetString(pt, keyVerificationCode, "Código de ativação:")
	message.SetString(pt, keyVerificationValidity, "Este código é válido por %d minutos, além de ser pessoal, intransferível e não deve ser compartilhado com terceiros.")
	message.SetString(pt, keyVerificationNoExpiry, "Este código é pessoal, intransferível e não deve ser compartilhado com terceiros.")
	message.SetString(pt, keyVerificationIgnore, "Se você não solicitou este código, pode ignorar com segurança este e-mail.")
	message.SetString(pt, keyVerificationMistake, "Outra pessoa pode ter digitado seu endereço de e-mail por engano.")
	message.SetString(pt, keyVerificationText, "Seu código de ativação da %s é %s. Ele é válido por %d minutos.")
	message.SetString(pt, keyVerificationTextNoExpiry, "Seu código de ativação da %s é %s.")
	message.SetString(pt, keyWelcomeSubject, "Bem-vindo à %s!")
	message.SetString(pt, keyWelcomeGreeting, "Olá,")
	message.SetString(pt, keyWelcomeIntro, "É com grande satisfação que damos as boas-vindas à plataforma %s! Estamos empolgados por você ter se juntado a nós.")
	message.SetString(pt, keyWelcomeSummary, "A %s é uma plataforma inovadora de visualização e compartilhamento da realidade capturada, projetada para revolucionar a forma como você interage com seus projetos e clientes. Aqui está um breve resumo do que você pode esperar:")
	message.SetString(pt, keyWelcomeFeatureTours, "Visualização instantânea de fotos 360° em tours virtuais")
	message.SetString(pt, keyWelcomeFeatureModels, "Filmagens e modelos 3D em nuvem de pontos e objeto")
	message.SetString(pt, keyWelcomeFeatureNotes, "Ferramentas ágeis para gerar anotações e compartilhar relatórios")
	message.SetString(pt, keyWelcomeFeatureTeams, "Soluções personalizadas para engenheiros, gestores de obras, arquitetos, geólogos, topógrafos e muito mais")
	message.SetString(pt, keyWelcomeSupport, "Estamos aqui para ajudar você a turbinar o relacionamento com seus clientes e parceiros de projetos. Não hesite em entrar em contato se tiver alguma dúvida ou precisar de assistência.")
	message.SetString(pt, keyWelcomeClosing, "Bem-vindo a bordo!")
	message.SetString(pt, keyWelcomeText, "Bem-vindo à %s! Para mais informações, verifique seu email.")
	message.SetString(pt, keySignatureThanks, "Obrigado,")
	message.SetString(pt, keySignatureTeam, "Equipe %s")

	en := language.English

	message.SetString(en, keyVerificationSubject, "Verification Code")
	message.SetString(en, keyVerificationGreeting, "Hello!")
	message.SetString(en, keyVerificationIntro, "We received a request for a validation code for your %s account.")
	message.SetString(en, keyVerificationCode, "Activation code:")
	message.SetString(en, keyVerificationValidity, "This code is valid for %d minutes. It is personal and must not be shared with anyone.")
	message.SetString(en, keyVerificationNoExpiry, "This code is personal and must not be shared with anyone.")
	message.SetString(en, keyVerificationIgnore, "If you did not request this code you can safely ignore this email.")
	message.SetString(en, keyVerificationMistake, "Someone else may have typed your email address by mistake.")
	message.SetString(en, keyVerificationText, "Your %s activation code is %s. It is valid for %d minutes.")
	message.SetString(en, keyVerificationTextNoExpiry, "Your %s activation code is %s.")
	message.SetString(en, keyWelcomeSubject, "Welcome to %s!")
	message.SetString(en, keyWelcomeGreeting, "Hello,")
	message.SetString(en, keyWelcomeIntro, "We are delighted to welcome you to %s! We are excited to have you with us.")
	message.SetString(en, keyWelcomeSummary, "%s is a platform to view and share captured reality, built to change how you work with your projects and clients. Here is what you can expect:")
	message.SetString(en, keyWelcomeFeatureTours, "Instant 360° photo virtual tours")
	message.SetString(en, keyWelcomeFeatureModels, "Footage and 3D point cloud and object models")
	message.SetString(en, keyWelcomeFeatureNotes, "Quick tools to annotate and share reports")
	message.SetString(en, keyWelcomeFeatureTeams, "Tailored solutions for engineers, construction managers, architects, geologists, surveyors and more")
	message.SetString(en, keyWelcomeSupport, "We are here to help you strengthen the relationship with your clients and project partners. Reach out whenever you have a question or need assistance.")
	message.SetString(en, keyWelcomeClosing, "Welcome aboard!")
	message.SetString(en, keyWelcomeText, "Welcome to %s! Check your email for more information.")
	message.SetString(en, keySignatureThanks, "Thank you,")
	message.SetString(en, keySignatureTeam, "The %s team")
}

// ResolveTag maps a language name to the closest supported tag,
// defaulting to Brazilian Portuguese.
func ResolveTag(lang string) language.Tag {
	tag, err := language.Parse(lang)
	if err != nil {
		return supportedTags[0]
	}
	_, index, confidence := matcher.Match(tag)
	if confidence == language.No {
		return supportedTags[0]
	}
	return supportedTags[index]
}
